package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Número proceso", "Nombre proceso", "Es TIC", "Columna Libre"},
		{"100-0001-LPU25", "Adquisición de notebooks", true, "algo"},
		{"100-0002-CDI25", "", false, ""},
		{"", "", "", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestRunConvertModeloTICs(t *testing.T) {
	dir := t.TempDir()
	workbook := filepath.Join(dir, "procesos.xlsx")
	writeWorkbook(t, workbook)

	convertSheet = "Sheet1"
	convertHeaderRow = 1
	convertOutput = filepath.Join(dir, "procesos.json")
	convertModelTICs = true

	require.NoError(t, runConvert(workbook))

	data, err := os.ReadFile(convertOutput)
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, "100-0001-LPU25", rows[0]["numero_proceso"])
	assert.Equal(t, "Adquisición de notebooks", rows[0]["nombre_proceso"])
	assert.Equal(t, true, rows[0]["es_tic"])
	// Headers outside the model fall back to folded snake_case
	assert.Equal(t, "algo", rows[0]["columna_libre"])

	assert.Equal(t, false, rows[1]["es_tic"])
	assert.Nil(t, rows[1]["nombre_proceso"])
}

func TestColumnName(t *testing.T) {
	convertModelTICs = false
	assert.Equal(t, "numero_proceso", columnName("Número proceso"))
	assert.Equal(t, "fecha_de_apertura", columnName("Fecha de apertura"))
	assert.Equal(t, "", columnName("   "))

	convertModelTICs = true
	assert.Equal(t, "saf", columnName("Servicio Administrativo Financiero"))
	assert.Equal(t, "pliego_numero", columnName("Pliego N°"))
}
