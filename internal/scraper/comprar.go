package scraper

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"arcompras/comprasworker/config"
	"arcompras/comprasworker/helpers"
	"arcompras/comprasworker/internal/extract"
	"arcompras/comprasworker/internal/record"
	"arcompras/comprasworker/logger"
	apperrors "arcompras/comprasworker/pkg/errors"
	"arcompras/comprasworker/services/cache"
	"arcompras/comprasworker/services/export"
)

// navigator abstracts how listing pages and detail pages are reached: a
// plain HTTP session replaying postbacks, or a headless browser clicking
// through the grid. The scraping pipeline on top is identical.
type navigator interface {
	// Start loads the first listing page.
	Start(ctx context.Context) (*goquery.Document, error)

	// NextPage advances to page (2-based). ok is false once pagination is
	// exhausted.
	NextPage(ctx context.Context, page int) (doc *goquery.Document, ok bool, err error)

	// Detail opens the detail page of a listing row. Returns
	// ErrDetailUnavailable when the source cannot render it.
	Detail(ctx context.Context, row record.ListingRow) (page *extract.Page, finalURL string, err error)

	Close()
}

// ComprarScraper walks the COMPR.AR "Ver todos" grid, visits every process
// detail and flags TIC-looking processes. It never filters; es_tic is just a
// column.
type ComprarScraper struct {
	name       string
	origin     string
	cfg        *config.Config
	guard      *cache.Guard
	classifier *record.Classifier
	log        *logger.Logger

	newNavigator func(ctx context.Context, session *helpers.Session) (navigator, error)

	// Robot-specific behavior observed on the browser-rendered pages
	gdePliegoNaming     bool
	preferListingStatus bool
}

// NewComprar creates the plain-HTTP COMPR.AR adapter.
func NewComprar(cfg *config.Config, cacheSvc cache.CacheService) *ComprarScraper {
	s := &ComprarScraper{
		name:       KeyComprarTICs,
		origin:     "COMPRAR",
		cfg:        cfg,
		guard:      cache.NewGuard(cacheSvc, "comprar", cfg.BlockTime),
		classifier: record.NewClassifier(nil),
		log:        logger.ForScraper(KeyComprarTICs),
	}
	s.newNavigator = func(_ context.Context, session *helpers.Session) (navigator, error) {
		return newHTTPNavigator(cfg, session, s.log), nil
	}
	return s
}

// NewComprarRobot creates the browser-driven COMPR.AR adapter. Same pipeline,
// different navigator; the rendered pages name the pliego via GDE numbers and
// show stale status fields on the detail view, hence the two toggles.
func NewComprarRobot(cfg *config.Config, cacheSvc cache.CacheService) *ComprarScraper {
	s := &ComprarScraper{
		name:                KeyComprarTICsRobot,
		origin:              "COMPRAR-ROBOT",
		cfg:                 cfg,
		guard:               cache.NewGuard(cacheSvc, "comprar", cfg.BlockTime),
		classifier:          record.NewClassifier(nil),
		log:                 logger.ForScraper(KeyComprarTICsRobot),
		gdePliegoNaming:     true,
		preferListingStatus: true,
	}
	s.newNavigator = func(ctx context.Context, _ *helpers.Session) (navigator, error) {
		return newBrowserNavigator(ctx, cfg, s.log)
	}
	return s
}

// Name returns the registry key of the adapter.
func (s *ComprarScraper) Name() string {
	return s.name
}

// Scrape implements the Scraper interface.
func (s *ComprarScraper) Scrape(ctx context.Context, job Job) (Result, error) {
	if job.EndDate.Before(job.StartDate) {
		return Result{}, apperrors.NewValidation(s.name, "end date is before start date")
	}
	if s.guard.Blocked() {
		return Result{}, apperrors.NewRateLimit(s.name, s.guard.Remaining())
	}

	progress := NewReporter(job.Progress)

	session := helpers.NewSession(s.cfg.HTTPTimeout)
	defer session.Close()

	nav, err := s.newNavigator(ctx, session)
	if err != nil {
		return Result{}, err
	}
	defer nav.Close()

	doc, err := nav.Start(ctx)
	if err != nil {
		if helpers.IsRateLimited(err) {
			s.guard.Trip()
		}
		return Result{}, apperrors.NewNetwork(s.name, "failed to load listing", err)
	}

	total := ParseTotalResults(doc)
	if total > 0 {
		s.log.Info().Int("total", total).Msg("Listing reports total results")
	}

	var records []record.ProcessRecord
	processed := 0
	cancelled := false
	pageNum := 1

pages:
	for {
		rows := ListingRows(doc)
		s.log.Info().Int("page", pageNum).Int("rows", len(rows)).Msg("Parsed listing page")
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			if job.Cancelled() {
				cancelled = true
				break pages
			}

			records = append(records, s.processRow(ctx, nav, session, row))
			processed++

			if total > 0 {
				progress.Fraction(processed, total)
			} else {
				progress.Report(min(processed, 99))
			}

			sleepCtx(ctx, s.cfg.RequestDelay)
		}

		pageNum++
		if s.cfg.MaxPages > 0 && pageNum > s.cfg.MaxPages {
			break
		}

		next, ok, err := nav.NextPage(ctx, pageNum)
		if err != nil {
			if helpers.IsRateLimited(err) {
				s.guard.Trip()
			}
			s.log.Warn().Int("page", pageNum).Err(err).Msg("Failed to load next listing page, stopping pagination")
			break
		}
		if !ok {
			break
		}
		doc = next
		sleepCtx(ctx, s.cfg.PageDelay)
	}

	result := Result{Count: len(records), Cancelled: cancelled, Records: records}

	if len(records) > 0 {
		path := filepath.Join(job.OutputDir, export.Filename(s.name, job.StartDate, job.EndDate))
		if err := export.WriteExcel(path, export.ComprarColumns(), records); err != nil {
			return result, apperrors.NewExport(s.name, "failed to write workbook", err)
		}
		result.OutputFile = path
		s.log.Info().Str("file", path).Int("count", len(records)).Msg("Exported records")
	}

	if !cancelled {
		progress.Done()
	}
	return result, nil
}

// processRow merges listing fields with the detail page of one process. A
// failed detail fetch degrades to a listing-only record, it never aborts the
// run.
func (s *ComprarScraper) processRow(ctx context.Context, nav navigator, session *helpers.Session, row record.ListingRow) record.ProcessRecord {
	var rec record.ProcessRecord

	page, finalURL, err := nav.Detail(ctx, row)
	switch {
	case err != nil:
		if helpers.IsRateLimited(err) {
			s.guard.Trip()
		}
		if errors.Is(err, ErrDetailUnavailable) {
			s.log.Debug().Str("proceso", row.ProcessNumber).Msg("Detail unavailable, keeping listing fields")
		} else {
			s.log.Warn().Str("proceso", row.ProcessNumber).Err(err).Msg("Failed to fetch detail, keeping listing fields")
		}
		rec = row.Record()
	default:
		detail := ExtractProcessFields(ctx, page, finalURL, s.cfg.ComprarBaseURL, session, s.log)
		if s.gdePliegoNaming {
			s.overridePliegoName(page, &detail)
		}
		rec = row.Merge(detail)
		if s.preferListingStatus {
			if row.Status != "" {
				rec.Status = row.Status
			}
			if row.ExecutingUnit != "" {
				rec.ExecutingUnit = row.ExecutingUnit
			}
			if row.SAF != "" {
				rec.SAF = row.SAF
			}
		}
	}

	if rec.DetailURL == "" {
		rec.DetailURL = NormalizeDetailURL(row.DetailHref, s.cfg.ComprarBaseURL)
	}
	rec.Origin = s.origin
	rec.IsTIC = s.classifier.IsTIC(rec.ProductDetail + " " + rec.ProcessName)
	rec.Year = record.YearFromDate(rec.OpeningDate)
	return rec
}

var pliegoNumberRe = regexp.MustCompile(`PLIEG-\d{4,}-[A-Z0-9#\-]+`)

// overridePliegoName replaces the anexos-derived pliego name with the GDE
// document number shown on browser-rendered detail pages.
func (s *ComprarScraper) overridePliegoName(page *extract.Page, rec *record.ProcessRecord) {
	text := strings.Join(page.Lines(), " ")
	if m := pliegoNumberRe.FindString(text); m != "" {
		rec.PliegoName = m
		return
	}
	if v := extract.FindAfterLabel(page.Lines(), "Número GDE", labelLookahead); v != "" {
		rec.PliegoName = v
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
