package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"arcompras/comprasworker/helpers"
	"arcompras/comprasworker/internal/record"
)

var totalResultsRe = regexp.MustCompile(`Se han encontrado\s*\((\d+)\)\s*resultados`)

// ParseTotalResults reads the "Se han encontrado (N) resultados" banner.
// Returns 0 when the banner is absent.
func ParseTotalResults(doc *goquery.Document) int {
	text := helpers.CleanText(doc.Text())
	m := totalResultsRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// FindGridTable locates the process grid by its header captions.
func FindGridTable(doc *goquery.Document) *goquery.Selection {
	var grid *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var headerText string
		table.Find("tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			headerText += helpers.CleanText(cell.Text()) + " "
		})
		if containsAll(headerText, "Número de Proceso", "Nombre descriptivo de Proceso", "Fecha de Apertura") {
			grid = table
			return false
		}
		return true
	})
	return grid
}

// ListingRows extracts the listing rows of the process grid. Pager rows and
// rows without a process number are dropped.
func ListingRows(doc *goquery.Document) []record.ListingRow {
	grid := FindGridTable(doc)
	if grid == nil {
		return nil
	}

	var rows []record.ListingRow
	grid.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 7 {
			return
		}

		cellText := func(i int) string {
			return helpers.CleanText(cells.Eq(i).Text())
		}

		number := cellText(0)
		// Pager rows repeat inside the grid as cells of bare digits
		if number == "" || !hasLetter(number) {
			return
		}

		href, _ := tr.Find("a[href]").First().Attr("href")

		rows = append(rows, record.ListingRow{
			ProcessNumber: number,
			ProcessName:   cellText(1),
			ProcessType:   cellText(2),
			OpeningDate:   cellText(3),
			Status:        cellText(4),
			ExecutingUnit: cellText(5),
			SAF:           cellText(6),
			DetailHref:    href,
		})
	})
	return rows
}

func containsAll(haystack string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(haystack, n) {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
