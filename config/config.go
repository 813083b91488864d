package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Source URLs
	BoletinBaseURL string
	ComprarBaseURL string
	ComprarListURL string

	// Politeness
	RequestDelay time.Duration
	PageDelay    time.Duration
	HTTPTimeout  time.Duration
	MaxPages     int

	// Headless browser
	ChromeHeadless bool
	ChromePath     string

	// Memcache configuration (rate-limit guard)
	MemcacheAddr string
	BlockTime    time.Duration

	// Redis configuration (record stream sink)
	RedisAddr      string
	RedisDB        int
	RedisStream    string
	RedisStreamMax int64

	// Google Cloud sinks
	GCPProject          string
	GCPCredentials      string
	BigQueryDataset     string
	BigQueryTable       string
	FirestoreCollection string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	requestDelay, _ := strconv.Atoi(getEnv("REQUEST_DELAY_MS", "1000"))
	pageDelay, _ := strconv.Atoi(getEnv("PAGE_DELAY_MS", "1000"))
	httpTimeout, _ := strconv.Atoi(getEnv("HTTP_TIMEOUT_SECONDS", "30"))
	maxPages, _ := strconv.Atoi(getEnv("MAX_PAGES", "0"))
	blockTime, _ := strconv.Atoi(getEnv("BLOCK_SECONDS", "300"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMax, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "500"))

	return &Config{
		BoletinBaseURL: getEnv("BOLETIN_BASE_URL", "https://www.boletinoficial.gob.ar"),
		ComprarBaseURL: getEnv("COMPRAR_BASE_URL", "https://comprar.gob.ar"),
		ComprarListURL: getEnv("COMPRAR_LIST_URL", "https://comprar.gob.ar/Compras.aspx?qs=W1HXHGHtH10="),

		RequestDelay: time.Duration(requestDelay) * time.Millisecond,
		PageDelay:    time.Duration(pageDelay) * time.Millisecond,
		HTTPTimeout:  time.Duration(httpTimeout) * time.Second,
		MaxPages:     maxPages,

		ChromeHeadless: getEnv("CHROME_HEADLESS", "true") == "true",
		ChromePath:     getEnv("CHROME_PATH", ""),

		MemcacheAddr: getEnv("MEMCACHE_ADDR", ""),
		BlockTime:    time.Duration(blockTime) * time.Second,

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisDB:        redisDB,
		RedisStream:    getEnv("REDIS_STREAM", "procesos"),
		RedisStreamMax: int64(redisStreamMax),

		GCPProject:          getEnv("GCP_PROJECT", ""),
		GCPCredentials:      getEnv("GCP_CREDENTIALS", ""),
		BigQueryDataset:     getEnv("BQ_DATASET", "proceso_compras"),
		BigQueryTable:       getEnv("BQ_TABLE", "procesos_tics"),
		FirestoreCollection: getEnv("FIRESTORE_COLLECTION", "procesos_tics"),

		Environment: getEnv("COMPRAS_ENVIRONMENT", "development"),
	}
}

// Validate checks that the loaded configuration is usable
func (c *Config) Validate() error {
	if c.BoletinBaseURL == "" {
		return fmt.Errorf("BOLETIN_BASE_URL must not be empty")
	}
	if c.ComprarBaseURL == "" || c.ComprarListURL == "" {
		return fmt.Errorf("COMPRAR_BASE_URL and COMPRAR_LIST_URL must not be empty")
	}
	if c.RequestDelay < 0 || c.PageDelay < 0 {
		return fmt.Errorf("request delays must not be negative")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("MAX_PAGES must not be negative")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
