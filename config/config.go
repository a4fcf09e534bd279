package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Feed      FeedConfig
	Dedup     DedupConfig
	Region    RegionConfig
	Time      TimeConfig
	Translate TranslateConfig
	Telegram  TelegramConfig
	Notify    NotifyConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
}

type FeedConfig struct {
	URL           string
	PollInterval  time.Duration
	FetchTimeout  time.Duration
	FetchRate     float64
	RetryAttempts int
	RetryDelay    time.Duration
}

type DedupConfig struct {
	// Backend selection: DatabaseURL wins over RedisURL, which wins over
	// the flat file path.
	FilePath       string
	DatabaseURL    string
	RedisURL       string
	MaxConns       int
	MinConns       int
	RecordAttempts int
}

type RegionConfig struct {
	// CountryCode is the ISO 3166-1 alpha-2 code events must resolve to.
	CountryCode string
	// TitleKeywords is a comma-separated list; geocoding is skipped when
	// none of them appear in the raw title. Empty disables the pre-filter.
	TitleKeywords string
	GeocoderURL  string
	Timeout      time.Duration
}

type TimeConfig struct {
	// Fixed zone offsets; neither zone in scope observes DST.
	SourceOffset time.Duration
	TargetOffset time.Duration
	TargetLabel  string
}

type TranslateConfig struct {
	URL        string
	SourceLang string
	TargetLang string
	Timeout    time.Duration
}

type TelegramConfig struct {
	BotToken string
	ChatID   string
	APIBase  string
	Timeout  time.Duration
}

type NotifyConfig struct {
	// Sliding-window outbound limit: at most WindowMax deliveries inside
	// any span of WindowLength.
	WindowMax     int
	WindowLength  time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
	MaxBackoff    time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Feed: FeedConfig{
			URL:           getEnv("FEED_URL", "https://earthquake.tmd.go.th/feed/rss_tmd.xml"),
			PollInterval:  getEnvDuration("FEED_POLL_INTERVAL", 10*time.Second),
			FetchTimeout:  getEnvDuration("FEED_FETCH_TIMEOUT", 30*time.Second),
			FetchRate:     getEnvFloat("FEED_FETCH_RATE", 1.0),
			RetryAttempts: getEnvInt("FEED_RETRY_ATTEMPTS", 2),
			RetryDelay:    getEnvDuration("FEED_RETRY_DELAY", 2*time.Second),
		},
		Dedup: DedupConfig{
			FilePath:       getEnv("DEDUP_FILE_PATH", "processed_ids.txt"),
			DatabaseURL:    getEnv("DATABASE_URL", ""),
			RedisURL:       getEnv("REDIS_URL", ""),
			MaxConns:       getEnvInt("DB_MAX_CONNS", 5),
			MinConns:       getEnvInt("DB_MIN_CONNS", 1),
			RecordAttempts: getEnvInt("DEDUP_RECORD_ATTEMPTS", 3),
		},
		Region: RegionConfig{
			CountryCode:  getEnv("REGION_COUNTRY_CODE", "MM"),
			TitleKeywords: getEnv("REGION_TITLE_KEYWORDS", "Myanmar"),
			GeocoderURL:  getEnv("GEOCODER_URL", "https://api.bigdatacloud.net/data/reverse-geocode-client"),
			Timeout:      getEnvDuration("GEOCODER_TIMEOUT", 15*time.Second),
		},
		Time: TimeConfig{
			SourceOffset: getEnvDuration("TIME_SOURCE_OFFSET", 0),
			TargetOffset: getEnvDuration("TIME_TARGET_OFFSET", 6*time.Hour+30*time.Minute),
			TargetLabel:  getEnv("TIME_TARGET_LABEL", "MMT"),
		},
		Translate: TranslateConfig{
			URL:        getEnv("TRANSLATE_URL", ""),
			SourceLang: getEnv("TRANSLATE_SOURCE_LANG", "th"),
			TargetLang: getEnv("TRANSLATE_TARGET_LANG", "en"),
			Timeout:    getEnvDuration("TRANSLATE_TIMEOUT", 15*time.Second),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
			APIBase:  getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
			Timeout:  getEnvDuration("TELEGRAM_TIMEOUT", 15*time.Second),
		},
		Notify: NotifyConfig{
			WindowMax:     getEnvInt("NOTIFY_WINDOW_MAX", 20),
			WindowLength:  getEnvDuration("NOTIFY_WINDOW_LENGTH", time.Minute),
			RetryAttempts: getEnvInt("NOTIFY_RETRY_ATTEMPTS", 3),
			RetryBackoff:  getEnvDuration("NOTIFY_RETRY_BACKOFF", 5*time.Second),
			MaxBackoff:    getEnvDuration("NOTIFY_MAX_BACKOFF", time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Feed.URL == "" {
		return fmt.Errorf("feed URL must be set")
	}
	if c.Feed.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Dedup.FilePath == "" && c.Dedup.DatabaseURL == "" && c.Dedup.RedisURL == "" {
		return fmt.Errorf("at least one dedup backend must be configured")
	}
	if c.Dedup.RecordAttempts < 1 {
		return fmt.Errorf("dedup record attempts must be at least 1")
	}
	if c.Notify.WindowMax < 1 {
		return fmt.Errorf("notify window max must be at least 1")
	}
	if c.Notify.WindowLength <= 0 {
		return fmt.Errorf("notify window length must be positive")
	}
	if len(c.Region.CountryCode) != 2 {
		return fmt.Errorf("invalid country code: %q", c.Region.CountryCode)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
