package scraper

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"arcompras/comprasworker/config"
	"arcompras/comprasworker/helpers"
	"arcompras/comprasworker/internal/extract"
	"arcompras/comprasworker/internal/record"
	"arcompras/comprasworker/logger"
	apperrors "arcompras/comprasworker/pkg/errors"
	"arcompras/comprasworker/services/cache"
	"arcompras/comprasworker/services/export"
)

// boletinFilePrefix names the exported workbook of the tercera section runs.
const boletinFilePrefix = "contrataciones_tercera"

// Markers that end the free-text body of a notice.
const (
	publicationLabel = "Fecha de publicación"
	shareLabel       = "Compartir por email"
)

// notice is one listing entry of the tercera section for a given edition day.
type notice struct {
	Title       string
	URL         string
	EditionDate string
}

// BoletinScraper walks the Boletín Oficial tercera section day by day and
// parses every contracting notice of each edition.
type BoletinScraper struct {
	cfg        *config.Config
	guard      *cache.Guard
	classifier *record.Classifier
	log        *logger.Logger
}

// NewBoletin creates the Boletín Oficial adapter.
func NewBoletin(cfg *config.Config, cacheSvc cache.CacheService) *BoletinScraper {
	return &BoletinScraper{
		cfg:        cfg,
		guard:      cache.NewGuard(cacheSvc, "boletin", cfg.BlockTime),
		classifier: record.NewClassifier(nil),
		log:        logger.ForScraper(KeyBoletinTercera),
	}
}

// Name returns the registry key of the adapter.
func (s *BoletinScraper) Name() string {
	return KeyBoletinTercera
}

// Scrape implements the Scraper interface.
func (s *BoletinScraper) Scrape(ctx context.Context, job Job) (Result, error) {
	if job.EndDate.Before(job.StartDate) {
		return Result{}, apperrors.NewValidation(s.Name(), "end date is before start date")
	}
	if s.guard.Blocked() {
		return Result{}, apperrors.NewRateLimit(s.Name(), s.guard.Remaining())
	}

	progress := NewReporter(job.Progress)

	session := helpers.NewSession(s.cfg.HTTPTimeout)
	defer session.Close()

	totalDays := job.Days()
	var records []record.ProcessRecord
	cancelled := false
	dayIndex := 0

	for day := job.StartDate; !day.After(job.EndDate); day = day.AddDate(0, 0, 1) {
		if job.Cancelled() {
			cancelled = true
			break
		}

		notices, err := s.listNotices(ctx, session, day)
		if err != nil {
			// A day that fails to load is skipped, the rest of the range
			// still runs
			if helpers.IsRateLimited(err) {
				s.guard.Trip()
			}
			s.log.Warn().Str("edition", day.Format("2006-01-02")).Err(err).Msg("Failed to load edition listing")
		}
		s.log.Info().Str("edition", day.Format("2006-01-02")).Int("notices", len(notices)).Msg("Edition listed")

		if len(notices) == 0 {
			dayIndex++
			progress.Fraction(dayIndex, totalDays)
			continue
		}

		for i, n := range notices {
			if job.Cancelled() {
				cancelled = true
				break
			}

			rec, err := s.parseNotice(ctx, session, n)
			if err != nil {
				s.log.Warn().Str("url", n.URL).Err(err).Msg("Failed to parse notice, skipping")
				continue
			}
			records = append(records, rec)

			sleepCtx(ctx, s.cfg.RequestDelay)
			progress.Report(int(float64(dayIndex*100)/float64(totalDays) +
				float64((i+1)*100)/float64(len(notices)*totalDays)))
		}
		if cancelled {
			break
		}
		dayIndex++
	}

	result := Result{Count: len(records), Cancelled: cancelled, Records: records}

	if len(records) > 0 {
		path := filepath.Join(job.OutputDir, export.Filename(boletinFilePrefix, job.StartDate, job.EndDate))
		if err := export.WriteExcel(path, export.BoletinColumns(), records); err != nil {
			return result, apperrors.NewExport(s.Name(), "failed to write workbook", err)
		}
		result.OutputFile = path
		s.log.Info().Str("file", path).Int("count", len(records)).Msg("Exported records")
	}

	if !cancelled {
		progress.Done()
	}
	return result, nil
}

// listNotices fetches one edition day of the tercera section and returns its
// notices, deduplicated by detail URL.
func (s *BoletinScraper) listNotices(ctx context.Context, session *helpers.Session, day time.Time) ([]notice, error) {
	sectionURL := s.cfg.BoletinBaseURL + "/seccion/tercera/" + day.Format("20060102")

	resp, err := session.Get(ctx, sectionURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var notices []notice
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, "/detalleAviso/tercera/") {
			return
		}
		full := href
		if !strings.HasPrefix(href, "http") {
			full = s.cfg.BoletinBaseURL + href
		}
		if seen[full] {
			return
		}
		seen[full] = true
		notices = append(notices, notice{
			Title:       helpers.CleanText(a.Text()),
			URL:         full,
			EditionDate: day.Format("2006-01-02"),
		})
	})
	return notices, nil
}

// parseNotice loads a notice detail page and extracts agency, process title,
// full body, object summary and publication date.
func (s *BoletinScraper) parseNotice(ctx context.Context, session *helpers.Session, n notice) (record.ProcessRecord, error) {
	resp, err := session.Get(ctx, n.URL)
	if err != nil {
		return record.ProcessRecord{}, err
	}
	page, err := extract.NewPageFromReader(resp.Body)
	if err != nil {
		return record.ProcessRecord{}, err
	}
	doc := page.Doc

	agency := helpers.CleanText(doc.Find("h1").First().Text())
	process := helpers.CleanText(headingAfterH1(doc))

	body := s.noticeBody(page, process)
	publication := publicationDate(doc)

	rec := record.ProcessRecord{
		ProcessName:   firstOf(process, n.Title),
		ExecutingUnit: agency,
		OpeningDate:   publication,
		ProductDetail: body,
		ObjectSummary: extract.ObjectSummary(body),
		EditionDate:   n.EditionDate,
		DetailURL:     n.URL,
		Origin:        "BORA",
	}
	rec.IsTIC = s.classifier.IsTIC(body + " " + process)
	rec.Year = record.YearFromDate(publication)
	if rec.Year == nil {
		rec.Year = record.YearFromDate(n.EditionDate)
	}
	return rec, nil
}

// noticeBody collects the text between the process heading and the
// publication footer. Falls back to the first paragraph after the heading.
func (s *BoletinScraper) noticeBody(page *extract.Page, process string) string {
	lines := page.Lines()

	if process != "" {
		start := -1
		for i, line := range lines {
			if line == process {
				start = i
				break
			}
		}
		if start >= 0 {
			var parts []string
			for _, line := range lines[start+1:] {
				if strings.Contains(line, publicationLabel) || strings.Contains(line, shareLabel) {
					break
				}
				parts = append(parts, line)
			}
			if len(parts) > 0 {
				return strings.Join(parts, " ")
			}
		}
	}

	// Fallback: first p or div following the h2
	if block := blockAfterHeading(page.Doc); block != nil {
		return helpers.CleanText(block.Text())
	}
	return ""
}

// headingAfterH1 returns the text of the first h2 that follows the first h1
// in document order, or the first h2 at all when the page has no h1.
func headingAfterH1(doc *goquery.Document) string {
	h1 := doc.Find("h1").First()
	if h1.Length() == 0 {
		return doc.Find("h2").First().Text()
	}
	if n := elementAfter(doc, h1.Nodes[0], "h2"); n != nil {
		return doc.FindNodes(n).Text()
	}
	return ""
}

// blockAfterHeading returns the first p or div following the first h2.
func blockAfterHeading(doc *goquery.Document) *goquery.Selection {
	h2 := doc.Find("h2").First()
	if h2.Length() == 0 {
		return nil
	}
	if n := elementAfter(doc, h2.Nodes[0], "p", "div"); n != nil {
		return doc.FindNodes(n)
	}
	return nil
}

// elementAfter finds the first element with one of the given tag names that
// appears after the marker node in document order.
func elementAfter(doc *goquery.Document, marker *html.Node, tags ...string) *html.Node {
	var found *html.Node
	passed := false
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n == marker {
			passed = true
			// Descendants of the marker do not count as "after"
			return false
		}
		if passed && n.Type == html.ElementNode {
			for _, tag := range tags {
				if n.Data == tag {
					found = n
					return true
				}
			}
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
	return found
}

// publicationDate extracts the publication date from the element holding the
// "Fecha de publicación" label.
func publicationDate(doc *goquery.Document) string {
	var value string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode && strings.Contains(n.Data, publicationLabel) && n.Parent != nil {
			text := helpers.CleanText(doc.FindNodes(n.Parent).Text())
			value = strings.TrimSpace(strings.Replace(text, publicationLabel, "", 1))
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
	return value
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
