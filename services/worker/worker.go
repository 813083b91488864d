// Package worker runs a scrape job in the background with cooperative
// cancellation and optional publishing of the collected records.
package worker

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"arcompras/comprasworker/internal/scraper"
	"arcompras/comprasworker/logger"
	"arcompras/comprasworker/services/export"
	"arcompras/comprasworker/services/publisher"
)

// Outcome is the terminal state of a run.
type Outcome struct {
	Result scraper.Result
	Err    error
}

// Runner drives one scraper through one job on a background goroutine.
type Runner struct {
	scraper   scraper.Scraper
	publisher publisher.Publisher
	log       *logger.Logger

	cancelled atomic.Bool
	done      chan Outcome
}

// NewRunner creates a runner for one scraper. pub may be nil, in which case
// records are only exported, not streamed.
func NewRunner(s scraper.Scraper, pub publisher.Publisher) *Runner {
	return &Runner{
		scraper:   s,
		publisher: pub,
		log:       logger.ForWorker().WithField("scraper", s.Name()),
		done:      make(chan Outcome, 1),
	}
}

// Start launches the job. The returned channel receives exactly one Outcome.
func (r *Runner) Start(ctx context.Context, job scraper.Job) <-chan Outcome {
	userCancel := job.IsCancelled
	job.IsCancelled = func() bool {
		if r.cancelled.Load() {
			return true
		}
		return userCancel != nil && userCancel()
	}

	go func() {
		result, err := r.scraper.Scrape(ctx, job)
		if err != nil {
			r.log.Error().Err(err).Msg("Run failed")
		} else {
			r.log.Info().Int("count", result.Count).Bool("cancelled", result.Cancelled).Msg("Run finished")
			r.publish(result)
		}
		r.done <- Outcome{Result: result, Err: err}
	}()

	return r.done
}

// Cancel requests a cooperative stop. The run keeps what it already
// collected.
func (r *Runner) Cancel() {
	r.cancelled.Store(true)
}

// Cancelled reports whether Cancel was called.
func (r *Runner) Cancelled() bool {
	return r.cancelled.Load()
}

// publish streams each collected record to the configured sink.
func (r *Runner) publish(result scraper.Result) {
	if r.publisher == nil || len(result.Records) == 0 {
		return
	}

	published := 0
	for _, rec := range result.Records {
		data, err := json.Marshal(export.RecordMap(rec))
		if err != nil {
			r.log.Error().Err(err).Msg("Failed to encode record for publishing")
			continue
		}
		if err := r.publisher.Publish(data); err != nil {
			r.log.Error().Err(err).Msg("Failed to publish record")
			continue
		}
		published++
	}

	if err := r.publisher.TrimStream(); err != nil {
		r.log.Error().Err(err).Msg("Failed to trim stream")
	}
	r.log.Info().Int("published", published).Msg("Published records")
}
