// Package scraper implements the source adapters that turn government
// procurement sites into normalized process records.
package scraper

import (
	"context"
	"errors"
	"time"

	"arcompras/comprasworker/internal/record"
)

// Job describes one scrape run. Progress and IsCancelled may be nil.
type Job struct {
	StartDate time.Time
	EndDate   time.Time
	OutputDir string

	// Progress receives percentages in [0,100], non-decreasing.
	Progress func(pct int)

	// IsCancelled is polled between units of work. When it returns true the
	// run stops early and keeps what it already collected.
	IsCancelled func() bool
}

// Cancelled polls the cancellation token, tolerating a nil one.
func (j Job) Cancelled() bool {
	return j.IsCancelled != nil && j.IsCancelled()
}

// Days returns the number of calendar days covered by the job, at least 1.
func (j Job) Days() int {
	days := int(j.EndDate.Sub(j.StartDate).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// Result is the outcome of a scrape run.
type Result struct {
	Count      int
	Cancelled  bool
	Records    []record.ProcessRecord
	OutputFile string
}

// Scraper is one source adapter.
type Scraper interface {
	// Name returns the registry key of the adapter.
	Name() string

	// Scrape runs the whole pipeline: listing, details, classification and
	// export. Per-item failures are logged and skipped; the returned error is
	// reserved for failures that abort the run.
	Scrape(ctx context.Context, job Job) (Result, error)
}

// ErrDetailUnavailable means the detail page for a listing row could not be
// reached. The row is kept with listing-only fields.
var ErrDetailUnavailable = errors.New("detail page unavailable")
