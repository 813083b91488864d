package commands

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"arcompras/comprasworker/helpers"
	"arcompras/comprasworker/logger"
	"arcompras/comprasworker/services/export"
)

var (
	convertSheet     string
	convertHeaderRow int
	convertOutput    string
	convertModelTICs bool
)

// modeloTICsHeaders maps the workbook captions to the warehouse column names.
var modeloTICsHeaders = map[string]string{
	"Número proceso":                     "numero_proceso",
	"Expediente":                         "expediente",
	"Nombre proceso":                     "nombre_proceso",
	"Tipo de Proceso":                    "tipo_proceso",
	"Fecha de apertura":                  "fecha_apertura",
	"Estado":                             "estado",
	"Unidad Ejecutora":                   "unidad_ejecutora",
	"Servicio Administrativo Financiero": "saf",
	"Detalle de productos o servicios":   "detalle_productos_servicios",
	"Pliego N°":                          "pliego_numero",
	"LINK":                               "link",
	"Es TIC":                             "es_tic",
}

var convertCmd = &cobra.Command{
	Use:   "convert <workbook.xlsx>",
	Short: "Convert an exported workbook to a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(args[0])
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertSheet, "sheet", "Sheet1", "worksheet to read")
	convertCmd.Flags().IntVar(&convertHeaderRow, "header-row", 1, "1-based row holding the column headers")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output JSON path (default: workbook name with .json)")
	convertCmd.Flags().BoolVar(&convertModelTICs, "modelo-tics", false, "rename headers to the warehouse column names")
}

func runConvert(path string) error {
	log := logger.ForExporter()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(convertSheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", convertSheet, err)
	}
	if len(rows) < convertHeaderRow {
		return fmt.Errorf("sheet %s has no header row %d", convertSheet, convertHeaderRow)
	}

	headers := make([]string, len(rows[convertHeaderRow-1]))
	for i, h := range rows[convertHeaderRow-1] {
		headers[i] = columnName(h)
	}

	var out []map[string]interface{}
	for _, row := range rows[convertHeaderRow:] {
		if emptyRow(row) {
			continue
		}
		obj := make(map[string]interface{}, len(headers))
		for i, name := range headers {
			if name == "" {
				continue
			}
			var cell string
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			obj[name] = cellValue(name, cell)
		}
		out = append(out, obj)
	}

	output := convertOutput
	if output == "" {
		output = strings.TrimSuffix(path, ".xlsx") + ".json"
	}
	if err := export.WriteJSON(output, out); err != nil {
		return err
	}

	log.Info().Str("file", output).Int("rows", len(out)).Msg("Converted workbook")
	return nil
}

var nonColumnChars = regexp.MustCompile(`[^a-z0-9]+`)

// columnName maps a workbook caption to a JSON key: the warehouse name when
// the TIC model is requested, a folded snake_case fallback otherwise.
func columnName(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if convertModelTICs {
		if name, ok := modeloTICsHeaders[header]; ok {
			return name
		}
	}
	name := nonColumnChars.ReplaceAllString(helpers.Fold(header), "_")
	return strings.Trim(name, "_")
}

// cellValue types a cell: booleans for the es_tic column, null for blanks.
func cellValue(name, cell string) interface{} {
	if cell == "" {
		return nil
	}
	if name == "es_tic" {
		return strings.EqualFold(cell, "true") || strings.EqualFold(cell, "verdadero")
	}
	return cell
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
