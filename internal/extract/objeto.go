package extract

import (
	"regexp"
	"strings"

	"arcompras/comprasworker/helpers"
)

var objectLabelRe = regexp.MustCompile(
	`(?i)(Objeto(?: de la contrataci[oó]n)?|Objeto de la licitaci[oó]n|Asunto)\s*:?`,
)

// Phrases that mark the end of the object description inside a notice body.
var objectCutMarkers = []string{
	"Retiro del Pliego",
	"Presentación de Ofertas",
	"Presentacion de Ofertas",
	"Consulta del Pliego",
	"Plazo y horario",
	"VALOR DEL PLIEGO",
	"DIRECCION INSTITUCIONAL DE CORREO ELECTRONICO",
	"Dirección institucional de correo electrónico",
	"LUGAR DE CONSULTAS",
	"FECHA Y HORA ACTO DE APERTURA",
	"Fecha de publicación",
	"Compartir por email",
}

// ObjectSummary pulls just the object/subject description out of a notice
// body: the text following "Objeto:"/"Asunto:" up to the first boilerplate
// marker. Returns "" when no object label is present.
func ObjectSummary(text string) string {
	text = helpers.CleanText(text)
	if text == "" {
		return ""
	}

	loc := objectLabelRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	sub := strings.TrimSpace(text[loc[1]:])

	cutIdx := len(sub)
	lowerSub := strings.ToLower(sub)
	for _, marker := range objectCutMarkers {
		if pos := strings.Index(lowerSub, strings.ToLower(marker)); pos != -1 && pos < cutIdx {
			cutIdx = pos
		}
	}

	return strings.Trim(sub[:cutIdx], " .-;:")
}
