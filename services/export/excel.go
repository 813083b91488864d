// Package export writes scraped records to spreadsheets and JSON files.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"arcompras/comprasworker/internal/record"
)

const sheetName = "Sheet1"

// Column maps a spreadsheet header to a record field.
type Column struct {
	Header string
	Value  func(r record.ProcessRecord) interface{}
}

// ComprarColumns is the column layout of COMPR.AR exports.
func ComprarColumns() []Column {
	return []Column{
		{"Número proceso", func(r record.ProcessRecord) interface{} { return r.ProcessNumber }},
		{"Expediente", func(r record.ProcessRecord) interface{} { return r.FileNumber }},
		{"Nombre proceso", func(r record.ProcessRecord) interface{} { return r.ProcessName }},
		{"Tipo de Proceso", func(r record.ProcessRecord) interface{} { return r.ProcessType }},
		{"Fecha de apertura", func(r record.ProcessRecord) interface{} { return r.OpeningDate }},
		{"Estado", func(r record.ProcessRecord) interface{} { return r.Status }},
		{"Unidad Ejecutora", func(r record.ProcessRecord) interface{} { return r.ExecutingUnit }},
		{"Servicio Administrativo Financiero", func(r record.ProcessRecord) interface{} { return r.SAF }},
		{"Detalle de productos o servicios", func(r record.ProcessRecord) interface{} { return r.ProductDetail }},
		{"Pliego N°", func(r record.ProcessRecord) interface{} { return r.PliegoName }},
		{"LINK", func(r record.ProcessRecord) interface{} { return r.DetailURL }},
		{"Es TIC", func(r record.ProcessRecord) interface{} { return r.IsTIC }},
	}
}

// BoletinColumns is the column layout of Boletín Oficial exports.
func BoletinColumns() []Column {
	return []Column{
		{"Organismo", func(r record.ProcessRecord) interface{} { return r.ExecutingUnit }},
		{"Proceso", func(r record.ProcessRecord) interface{} { return r.ProcessName }},
		{"Fecha de publicación", func(r record.ProcessRecord) interface{} { return r.OpeningDate }},
		{"Fecha edición", func(r record.ProcessRecord) interface{} { return r.EditionDate }},
		{"Resumen proyecto", func(r record.ProcessRecord) interface{} { return r.ProductDetail }},
		{"Objeto", func(r record.ProcessRecord) interface{} { return r.ObjectSummary }},
		{"LINK", func(r record.ProcessRecord) interface{} { return r.DetailURL }},
		{"Es TIC", func(r record.ProcessRecord) interface{} { return r.IsTIC }},
	}
}

// Filename builds the conventional export name: prefix_YYYYMMDD_YYYYMMDD.xlsx.
func Filename(prefix string, start, end time.Time) string {
	return fmt.Sprintf("%s_%s_%s.xlsx", prefix, start.Format("20060102"), end.Format("20060102"))
}

// WriteExcel writes records to an xlsx workbook with one header row.
func WriteExcel(path string, cols []Column, records []record.ProcessRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := make([]interface{}, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, rec := range records {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = c.Value(rec)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
