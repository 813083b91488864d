// Package extract holds the HTML field-extraction primitives shared by the
// source scrapers. Detail pages on the target sites are label/value text with
// little stable markup, so most helpers work on the flattened text lines of a
// page rather than on selectors.
package extract

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"arcompras/comprasworker/helpers"
)

// Page wraps a parsed document together with its flattened text lines.
type Page struct {
	Doc   *goquery.Document
	lines []string
}

// NewPage wraps an already-parsed document.
func NewPage(doc *goquery.Document) *Page {
	return &Page{Doc: doc}
}

// NewPageFromReader parses HTML from a reader.
func NewPageFromReader(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return NewPage(doc), nil
}

// Lines returns every text node of the page in document order, whitespace
// collapsed, empties dropped. Computed once and cached.
func (p *Page) Lines() []string {
	if p.lines == nil {
		p.lines = flattenText(p.Doc)
	}
	return p.lines
}

// Strategy tries to extract a value from a page. ok is false when the
// strategy does not apply to this page.
type Strategy func(p *Page) (value string, ok bool)

// Chain runs strategies in order and returns the first hit, or "".
func Chain(strategies ...Strategy) func(p *Page) string {
	return func(p *Page) string {
		for _, s := range strategies {
			if v, ok := s(p); ok {
				return v
			}
		}
		return ""
	}
}

func flattenText(doc *goquery.Document) []string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := helpers.CleanText(n.Data); t != "" {
				lines = append(lines, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return lines
}

// tableAfter finds the first table element that appears after a text node
// containing marker (accent and case-insensitive), in document order.
func tableAfter(doc *goquery.Document, marker string) *goquery.Selection {
	folded := helpers.Fold(marker)
	var found *html.Node
	seen := false
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode && !seen {
			if strings.Contains(helpers.Fold(n.Data), folded) {
				seen = true
			}
		} else if n.Type == html.ElementNode && n.Data == "table" && seen {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	for _, root := range doc.Nodes {
		if walk(root) {
			break
		}
	}
	if found == nil {
		return nil
	}
	return doc.FindNodes(found)
}

// headerTexts returns the cleaned cell texts of a table's first row.
func headerTexts(table *goquery.Selection) []string {
	var headers []string
	table.Find("tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, helpers.CleanText(cell.Text()))
	})
	return headers
}
