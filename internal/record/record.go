// Package record defines the normalized procurement process record shared by
// every source scraper and sink.
package record

import (
	"regexp"
	"strconv"
	"strings"
)

// ProcessRecord is one scraped procurement process. JSON tags match the
// warehouse column names, so a marshalled record is directly loadable.
type ProcessRecord struct {
	ProcessNumber string `json:"numero_proceso"`
	FileNumber    string `json:"expediente"`
	ProcessName   string `json:"nombre_proceso"`
	ProcessType   string `json:"tipo_proceso"`
	OpeningDate   string `json:"fecha_apertura"`
	Status        string `json:"estado"`
	ExecutingUnit string `json:"unidad_ejecutora"`
	SAF           string `json:"saf"`
	ProductDetail string `json:"detalle_productos_servicios"`
	ObjectSummary string `json:"objeto_resumen,omitempty"`
	EditionDate   string `json:"fecha_edicion,omitempty"`
	PliegoName    string `json:"pliego_numero"`
	PliegoURL     string `json:"pliego_url,omitempty"`
	DetailURL     string `json:"link"`
	Origin        string `json:"origen"`
	IsTIC         bool   `json:"es_tic"`
	Year          *int   `json:"anio"`
}

// ListingRow holds the fields visible on a listing grid row before the detail
// page has been visited.
type ListingRow struct {
	ProcessNumber string
	ProcessName   string
	ProcessType   string
	OpeningDate   string
	Status        string
	ExecutingUnit string
	SAF           string
	DetailHref    string
}

// Merge combines detail-page fields with listing fields. Detail values win;
// listing values fill whatever the detail page did not provide.
func (row ListingRow) Merge(detail ProcessRecord) ProcessRecord {
	merged := detail
	merged.ProcessNumber = firstNonEmpty(detail.ProcessNumber, row.ProcessNumber)
	merged.ProcessName = firstNonEmpty(detail.ProcessName, row.ProcessName)
	merged.ProcessType = firstNonEmpty(detail.ProcessType, row.ProcessType)
	merged.OpeningDate = firstNonEmpty(detail.OpeningDate, row.OpeningDate)
	merged.Status = firstNonEmpty(detail.Status, row.Status)
	merged.ExecutingUnit = firstNonEmpty(detail.ExecutingUnit, row.ExecutingUnit)
	merged.SAF = firstNonEmpty(detail.SAF, row.SAF)
	return merged
}

// Record converts a listing row into a listing-only record, used when the
// detail page could not be fetched.
func (row ListingRow) Record() ProcessRecord {
	return ProcessRecord{
		ProcessNumber: row.ProcessNumber,
		ProcessName:   row.ProcessName,
		ProcessType:   row.ProcessType,
		OpeningDate:   row.OpeningDate,
		Status:        row.Status,
		ExecutingUnit: row.ExecutingUnit,
		SAF:           row.SAF,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var idWhitespaceRe = regexp.MustCompile(`\s+`)

// SanitizeID turns an arbitrary process number into a document id safe for
// document stores: slashes become dashes, whitespace runs become a single
// underscore. The result is stable under repeated application.
func SanitizeID(base string) string {
	s := strings.TrimSpace(base)
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = idWhitespaceRe.ReplaceAllString(s, "_")
	return s
}

var yearRe = regexp.MustCompile(`(\d{4})`)

// YearFromDate extracts the first four-digit run from a free-form date string.
// Returns nil when no year can be found.
func YearFromDate(date string) *int {
	m := yearRe.FindStringSubmatch(date)
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &year
}
