package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"arcompras/comprasworker/internal/record"
)

// RecordMap converts a record to a map where absent string fields become
// nil, so downstream JSON consumers see null instead of "".
func RecordMap(r record.ProcessRecord) map[string]interface{} {
	m := map[string]interface{}{
		"numero_proceso":              nullable(r.ProcessNumber),
		"expediente":                  nullable(r.FileNumber),
		"nombre_proceso":              nullable(r.ProcessName),
		"tipo_proceso":                nullable(r.ProcessType),
		"fecha_apertura":              nullable(r.OpeningDate),
		"estado":                      nullable(r.Status),
		"unidad_ejecutora":            nullable(r.ExecutingUnit),
		"saf":                         nullable(r.SAF),
		"detalle_productos_servicios": nullable(r.ProductDetail),
		"pliego_numero":               nullable(r.PliegoName),
		"link":                        nullable(r.DetailURL),
		"origen":                      nullable(r.Origin),
		"es_tic":                      r.IsTIC,
	}
	if r.Year != nil {
		m["anio"] = *r.Year
	} else {
		m["anio"] = nil
	}
	if r.ObjectSummary != "" {
		m["objeto_resumen"] = r.ObjectSummary
	}
	if r.EditionDate != "" {
		m["fecha_edicion"] = r.EditionDate
	}
	if r.PliegoURL != "" {
		m["pliego_url"] = r.PliegoURL
	}
	return m
}

// WriteJSON writes records as an indented JSON array, preserving non-ASCII
// characters as-is.
func WriteJSON(path string, rows []map[string]interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
