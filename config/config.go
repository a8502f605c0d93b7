package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/carwatcher/internal/criteria"
)

// Notification modes
const (
	NotifyEmail  = "email"
	NotifyFile   = "file"
	NotifyStream = "stream"
)

// Seen store backends
const (
	StoreJSON = "json"
	StoreBolt = "bolt"
)

// Config represents the application configuration
type Config struct {
	// Site configuration
	SearchURL  string
	SiteOrigin string
	// Extra query parameters appended to SearchURL next to year_min/year_max
	SearchParams map[string]string

	// Scheduler configuration
	CheckInterval    time.Duration
	CooldownInterval time.Duration
	RequestTimeout   time.Duration

	// Filter configuration
	Criteria criteria.Criteria

	// Notification configuration
	NotifyMode string
	ReportDir  string
	SMTP       SMTPConfig

	// Seen store configuration
	StoreBackend string
	StorePath    string

	// Selector overrides and debugging
	SelectorsFile string
	DebugPagePath string

	// Memcache configuration, empty means in-process cache
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Redis configuration for stream notifications
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// SMTPConfig holds the mail credentials, injected instead of hardcoded
type SMTPConfig struct {
	SenderAddress    string
	SenderSecret     string
	RecipientAddress string
	Host             string
	Port             int
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	checkMinutes, _ := strconv.Atoi(getEnv("CHECK_INTERVAL_MINUTES", "30"))
	cooldownMinutes, _ := strconv.Atoi(getEnv("COOLDOWN_MINUTES", "5"))
	requestTimeout, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "30"))
	yearMin, _ := strconv.Atoi(getEnv("YEAR_MIN", "2003"))
	yearMax, _ := strconv.Atoi(getEnv("YEAR_MAX", "2008"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	blockSeconds, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "600"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))

	return &Config{
		SearchURL:  getEnv("SEARCH_URL", "https://www.ss.com/lv/transport/cars/bmw/3-series/filter/"),
		SiteOrigin: getEnv("SITE_ORIGIN", "https://www.ss.com"),
		SearchParams: map[string]string{
			"engine_type": getEnv("SEARCH_ENGINE_TYPE", "2"),
			"gearbox":     getEnv("SEARCH_GEARBOX", "1"),
			"body_type":   getEnv("SEARCH_BODY_TYPE", "3"),
		},
		CheckInterval:    time.Duration(checkMinutes) * time.Minute,
		CooldownInterval: time.Duration(cooldownMinutes) * time.Minute,
		RequestTimeout:   time.Duration(requestTimeout) * time.Second,
		Criteria: criteria.New(
			getEnv("CRITERIA_LABEL", "BMW 3-Series"),
			yearMin,
			yearMax,
			getList("FUEL_KEYWORDS", "dīzelis,diesel"),
			getList("TRANSMISSION_KEYWORDS", "manuāla,manual"),
			getList("BODY_KEYWORDS", "universāls,universal,wagon,touring"),
		),
		NotifyMode: getEnv("NOTIFY_MODE", NotifyEmail),
		ReportDir:  getEnv("REPORT_DIR", "."),
		SMTP: SMTPConfig{
			SenderAddress:    os.Getenv("SMTP_SENDER"),
			SenderSecret:     os.Getenv("SMTP_SECRET"),
			RecipientAddress: os.Getenv("SMTP_RECIPIENT"),
			Host:             getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:             smtpPort,
		},
		StoreBackend:         getEnv("SEEN_STORE_BACKEND", StoreJSON),
		StorePath:            getEnv("SEEN_STORE_PATH", "seen_ads.json"),
		SelectorsFile:        os.Getenv("SELECTORS_FILE"),
		DebugPagePath:        os.Getenv("DEBUG_PAGE_PATH"),
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		RateLimitBlock:       time.Duration(blockSeconds) * time.Second,
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLength,
		Environment:          getEnv("CARWATCH_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.SearchURL == "" {
		return fmt.Errorf("search url is required")
	}
	if c.SiteOrigin == "" {
		return fmt.Errorf("site origin is required")
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check interval must be > 0")
	}
	if c.CooldownInterval <= 0 {
		return fmt.Errorf("cooldown interval must be > 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be > 0")
	}
	if err := c.Criteria.Validate(); err != nil {
		return fmt.Errorf("criteria: %w", err)
	}

	switch c.NotifyMode {
	case NotifyEmail:
		if c.SMTP.SenderAddress == "" || c.SMTP.SenderSecret == "" || c.SMTP.RecipientAddress == "" {
			return fmt.Errorf("SMTP_SENDER, SMTP_SECRET and SMTP_RECIPIENT are required in email mode")
		}
		if c.SMTP.Host == "" || c.SMTP.Port <= 0 {
			return fmt.Errorf("smtp host and port are required in email mode")
		}
	case NotifyFile:
	case NotifyStream:
		if c.RedisAddr == "" || c.RedisStream == "" {
			return fmt.Errorf("redis address and stream are required in stream mode")
		}
		if c.RedisStreamCount <= 0 {
			return fmt.Errorf("redis stream count must be > 0")
		}
	default:
		return fmt.Errorf("notify mode must be %q, %q or %q", NotifyEmail, NotifyFile, NotifyStream)
	}

	if c.StoreBackend != StoreJSON && c.StoreBackend != StoreBolt {
		return fmt.Errorf("seen store backend must be %q or %q", StoreJSON, StoreBolt)
	}
	if c.StorePath == "" {
		return fmt.Errorf("seen store path is required")
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

// getList splits a comma separated environment variable
func getList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
