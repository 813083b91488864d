// Package uploader pushes normalized process rows into the Google Cloud
// sinks: a BigQuery table and a Firestore collection.
package uploader

import (
	"fmt"

	"arcompras/comprasworker/internal/record"
)

// rowFields is the canonical column set of the warehouse table. Unknown keys
// in an input row are dropped, missing ones are filled with nil.
var rowFields = []string{
	"numero_proceso",
	"expediente",
	"nombre_proceso",
	"tipo_proceso",
	"fecha_apertura",
	"estado",
	"unidad_ejecutora",
	"saf",
	"detalle_productos_servicios",
	"objeto_resumen",
	"fecha_edicion",
	"pliego_numero",
	"pliego_url",
	"link",
	"origen",
	"es_tic",
	"anio",
}

// PrepareRow normalizes one input row to the canonical column set. A missing
// anio is derived from fecha_apertura when possible.
func PrepareRow(row map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(rowFields))
	for _, field := range rowFields {
		if v, ok := row[field]; ok {
			out[field] = v
		} else {
			out[field] = nil
		}
	}

	if out["anio"] == nil {
		if date, ok := out["fecha_apertura"].(string); ok {
			if year := record.YearFromDate(date); year != nil {
				out["anio"] = *year
			}
		}
	}

	return out
}

// DocID derives a document identifier from the row: the sanitized value of
// idField, or a positional fallback when the field is empty.
func DocID(row map[string]interface{}, idField string, position int) string {
	if v, ok := row[idField].(string); ok && v != "" {
		return record.SanitizeID(v)
	}
	return fmt.Sprintf("doc_%d", position+1)
}
