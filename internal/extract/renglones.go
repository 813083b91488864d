package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"arcompras/comprasworker/helpers"
)

// Section headings under which COMPR.AR lists the line items of a process.
var renglonesHeaders = []string{
	"detalle de productos o servicios",
	"detalle de bienes y servicios",
	"detalle de bienes o servicios",
	"renglones de la convocatoria",
}

// Table header keywords that identify a line-item table.
var renglonesTableKeywords = []string{
	"número de renglón",
	"numero de renglón",
	"numero de renglon",
	"objeto del gasto",
	"descripción del bien",
	"descripcion del bien",
	"detalle del bien",
	"detalle del producto",
}

// LineItemsFromText extracts the line-item block from the flattened page
// text: everything below a known heading until the next section or the modal
// close glyph, joined with " | ".
func LineItemsFromText(p *Page) (string, bool) {
	lines := p.Lines()
	headerIdx := -1
	for idx, line := range lines {
		low := strings.ToLower(line)
		for _, h := range renglonesHeaders {
			if strings.Contains(low, h) {
				headerIdx = idx
				break
			}
		}
		if headerIdx >= 0 {
			break
		}
	}
	if headerIdx < 0 {
		return "", false
	}

	var items []string
	for _, line := range lines[headerIdx+1:] {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, sectionPrefix+" ") {
			break
		}
		// Modal close button rendered as a lone multiplication sign
		if text == "×" {
			break
		}
		items = append(items, text)
	}
	if len(items) == 0 {
		return "", false
	}
	return strings.Join(items, " | "), true
}

// LineItemsFromTables falls back to scanning tables whose headers look like a
// line-item grid. Rows are joined with " | ", tables with "; ".
func LineItemsFromTables(p *Page) (string, bool) {
	var parts []string
	p.Doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		headerStr := strings.ToLower(strings.Join(headerTexts(table), " "))
		match := false
		for _, kw := range renglonesTableKeywords {
			if strings.Contains(headerStr, kw) {
				match = true
				break
			}
		}
		if !match {
			return
		}
		table.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
			var cols []string
			tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				if t := helpers.CleanText(cell.Text()); t != "" {
					cols = append(cols, t)
				}
			})
			if len(cols) > 0 {
				parts = append(parts, strings.Join(cols, " | "))
			}
		})
	})
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "; "), true
}

// ProductDetail extracts the line items of a process, preferring the text
// block over the table fallback.
var ProductDetail = Chain(LineItemsFromText, LineItemsFromTables)
