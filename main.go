package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"arcompras/comprasworker/config"
	"arcompras/comprasworker/internal/scraper"
	"arcompras/comprasworker/logger"
	"arcompras/comprasworker/services/cache"
	"arcompras/comprasworker/services/publisher"
	"arcompras/comprasworker/services/worker"
)

const dateLayout = "2006-01-02"

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	source := flag.String("source", scraper.KeyComprarTICs,
		fmt.Sprintf("source adapter to run (%s)", strings.Join(scraper.Keys(), ", ")))
	from := flag.String("from", time.Now().Format(dateLayout), "start of the date range (YYYY-MM-DD)")
	to := flag.String("to", time.Now().Format(dateLayout), "end of the date range (YYYY-MM-DD)")
	out := flag.String("out", ".", "directory for the exported workbook")
	flag.Parse()

	startDate, err := time.Parse(dateLayout, *from)
	if err != nil {
		log.Fatal().Str("from", *from).Err(err).Msg("Invalid start date")
	}
	endDate, err := time.Parse(dateLayout, *to)
	if err != nil {
		log.Fatal().Str("to", *to).Err(err).Msg("Invalid end date")
	}

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("source", *source).
		Str("from", *from).
		Str("to", *to).
		Msg("Starting application")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	s, err := scraper.New(*source, cfg, services.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Unknown source")
	}

	runner := worker.NewRunner(s, services.Publisher)

	job := scraper.Job{
		StartDate: startDate,
		EndDate:   endDate,
		OutputDir: *out,
		Progress: func(pct int) {
			log.Info().Int("pct", pct).Msg("Progress")
		},
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := runner.Start(ctx, job)

	for {
		select {
		case sig := <-sigChan:
			if runner.Cancelled() {
				log.Warn().Str("signal", sig.String()).Msg("Second signal, exiting immediately")
				os.Exit(1)
			}
			log.Info().Str("signal", sig.String()).Msg("Received shutdown signal, finishing current work")
			runner.Cancel()
		case outcome := <-done:
			if outcome.Err != nil {
				log.Fatal().Err(outcome.Err).Msg("Run failed")
			}
			log.Info().
				Int("count", outcome.Result.Count).
				Bool("cancelled", outcome.Result.Cancelled).
				Str("file", outcome.Result.OutputFile).
				Msg("Run finished")
			return
		}
	}
}

// Services holds the optional infrastructure services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices wires up memcache and redis when they are configured.
// Both are optional: without them the run still scrapes and exports.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	}

	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMax,
		)
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services
}
