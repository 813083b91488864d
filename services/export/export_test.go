package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"arcompras/comprasworker/internal/record"
)

func TestFilename(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "comprar_tics_20250301_20250315.xlsx", Filename("comprar_tics", start, end))
}

func TestWriteExcel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salida.xlsx")

	year := 2025
	records := []record.ProcessRecord{
		{
			ProcessNumber: "100-0001-LPU25",
			ProcessName:   "Adquisición de notebooks",
			Status:        "Publicado",
			DetailURL:     "https://comprar.gob.ar/detalle/1",
			IsTIC:         true,
			Year:          &year,
		},
		{
			ProcessNumber: "100-0002-CDI25",
			ProcessName:   "Compra de papel",
			IsTIC:         false,
		},
	}

	require.NoError(t, WriteExcel(path, ComprarColumns(), records))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Número proceso", rows[0][0])
	assert.Equal(t, "Es TIC", rows[0][len(ComprarColumns())-1])
	assert.Equal(t, "100-0001-LPU25", rows[1][0])
	assert.Equal(t, "Adquisición de notebooks", rows[1][2])
	assert.Equal(t, "100-0002-CDI25", rows[2][0])
}

func TestRecordMapNulls(t *testing.T) {
	rec := record.ProcessRecord{
		ProcessNumber: "100-0001-LPU25",
		Origin:        "COMPRAR",
		IsTIC:         true,
	}

	m := RecordMap(rec)
	assert.Equal(t, "100-0001-LPU25", m["numero_proceso"])
	assert.Nil(t, m["expediente"])
	assert.Nil(t, m["fecha_apertura"])
	assert.Nil(t, m["anio"])
	assert.Equal(t, true, m["es_tic"])
	// Per-source optional fields are absent, not null
	assert.NotContains(t, m, "objeto_resumen")
	assert.NotContains(t, m, "fecha_edicion")
}

func TestWriteJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salida.json")

	year := 2025
	rows := []map[string]interface{}{
		RecordMap(record.ProcessRecord{
			ProcessNumber: "100-0001-LPU25",
			ProcessName:   "Adquisición de ñandúes & notebooks",
			Origin:        "COMPRAR",
			IsTIC:         true,
			Year:          &year,
		}),
	}

	require.NoError(t, WriteJSON(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// Non-ASCII survives and & is not HTML-escaped
	assert.Contains(t, string(data), "ñandúes & notebooks")

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)

	got := decoded[0]
	assert.Equal(t, "100-0001-LPU25", got["numero_proceso"])
	// Fields that were empty stay null after the round trip
	assert.Contains(t, got, "expediente")
	assert.Nil(t, got["expediente"])
	assert.Nil(t, got["fecha_apertura"])
	assert.Equal(t, float64(2025), got["anio"])
}
