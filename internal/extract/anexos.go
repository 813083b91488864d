package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"arcompras/comprasworker/helpers"
)

// Attachment is a document linked from the Anexos section of a detail page.
type Attachment struct {
	Name string
	URL  string
}

// PliegoAttachment finds the tender document (pliego) in the Anexos section.
// Rows whose text mentions "pliego" win; the first linked row is the last
// resort. Returns a zero Attachment when nothing is linked.
func PliegoAttachment(p *Page, baseURL string) Attachment {
	table := tableAfter(p.Doc, "Anexos")

	// No Anexos heading: look for a table with attachment-like headers
	if table == nil || table.Length() == 0 {
		p.Doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
			headerStr := strings.ToLower(strings.Join(headerTexts(tbl), " "))
			if strings.Contains(headerStr, "nombre") &&
				(strings.Contains(headerStr, "tipo") || strings.Contains(headerStr, "anexo")) {
				table = tbl
				return false
			}
			return true
		})
	}
	if table == nil || table.Length() == 0 {
		return Attachment{}
	}

	rows := table.Find("tr").Slice(1, goquery.ToEnd)

	var name, href string

	// Pass 1: first column mentions pliego
	rows.EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		firstCol := helpers.CleanText(tr.Find("td, th").First().Text())
		link, ok := firstLink(tr)
		if firstCol != "" && ok && strings.Contains(helpers.Fold(firstCol), "pliego") {
			name, href = firstCol, link
			return false
		}
		return true
	})

	// Pass 2: any column mentions pliego
	if href == "" {
		rows.EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			allText := helpers.CleanText(tr.Text())
			link, ok := firstLink(tr)
			if allText != "" && ok && strings.Contains(helpers.Fold(allText), "pliego") {
				name = helpers.CleanText(tr.Find("td, th").First().Text())
				href = link
				return false
			}
			return true
		})
	}

	// Pass 3: first linked row of the table
	if href == "" {
		rows.EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			a := tr.Find("a[href]").First()
			if a.Length() == 0 {
				return true
			}
			href, _ = a.Attr("href")
			name = helpers.CleanText(a.Text())
			return false
		})
	}

	if href == "" {
		return Attachment{}
	}
	return Attachment{Name: name, URL: resolveURL(href, baseURL)}
}

func firstLink(tr *goquery.Selection) (string, bool) {
	a := tr.Find("a[href]").First()
	if a.Length() == 0 {
		return "", false
	}
	href, _ := a.Attr("href")
	return href, href != ""
}

func resolveURL(href, baseURL string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimPrefix(href, "~"))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
