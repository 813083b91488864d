package scraper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridHTML(rows []string, extra string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body>`)
	sb.WriteString(extra)
	sb.WriteString(`<table>
		<tr><th>Número de Proceso</th><th>Nombre descriptivo de Proceso</th><th>Tipo</th>
		<th>Fecha de Apertura</th><th>Estado</th><th>Unidad Ejecutora</th><th>SAF</th></tr>`)
	for _, r := range rows {
		sb.WriteString(r)
	}
	sb.WriteString(`</table></body></html>`)
	return sb.String()
}

func gridRow(i int) string {
	return fmt.Sprintf(`<tr>
		<td><a href="/detalle/%d">100-%04d-LPU25</a></td>
		<td>Proceso número %d</td>
		<td>Licitación Pública</td>
		<td>10/10/2025 12:00</td>
		<td>Publicado</td>
		<td>Unidad %d</td>
		<td>SAF %d</td>
	</tr>`, i, i, i, i, i)
}

func TestParseTotalResults(t *testing.T) {
	doc := docFrom(t, `<html><body><span>Se han encontrado (153) resultados</span></body></html>`)
	assert.Equal(t, 153, ParseTotalResults(doc))

	doc = docFrom(t, `<html><body>sin banner</body></html>`)
	assert.Equal(t, 0, ParseTotalResults(doc))
}

func TestFindGridTable(t *testing.T) {
	doc := docFrom(t, gridHTML([]string{gridRow(1)},
		`<table><tr><th>otra tabla</th></tr></table>`))
	assert.NotNil(t, FindGridTable(doc))

	doc = docFrom(t, `<html><body><table><tr><th>cualquier cosa</th></tr></table></body></html>`)
	assert.Nil(t, FindGridTable(doc))
}

func TestListingRows(t *testing.T) {
	pagerRow := `<tr><td colspan="7"><a href="#">1</a> <a href="#">2</a></td></tr>`
	digitRow := `<tr><td>1 2 3</td><td></td><td></td><td></td><td></td><td></td><td></td></tr>`
	doc := docFrom(t, gridHTML([]string{gridRow(1), gridRow(2), pagerRow, digitRow}, ""))

	rows := ListingRows(doc)
	require.Len(t, rows, 2)

	assert.Equal(t, "100-0001-LPU25", rows[0].ProcessNumber)
	assert.Equal(t, "Proceso número 1", rows[0].ProcessName)
	assert.Equal(t, "Licitación Pública", rows[0].ProcessType)
	assert.Equal(t, "10/10/2025 12:00", rows[0].OpeningDate)
	assert.Equal(t, "Publicado", rows[0].Status)
	assert.Equal(t, "Unidad 1", rows[0].ExecutingUnit)
	assert.Equal(t, "SAF 1", rows[0].SAF)
	assert.Equal(t, "/detalle/1", rows[0].DetailHref)
	assert.Equal(t, "100-0002-LPU25", rows[1].ProcessNumber)
}

func TestListingRowsNoGrid(t *testing.T) {
	doc := docFrom(t, `<html><body><p>vacío</p></body></html>`)
	assert.Empty(t, ListingRows(doc))
}
