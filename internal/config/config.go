package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	SMTP     SMTPConfig
	SNS      SNSConfig
	Monitor  MonitorConfig
	Explain  ExplainConfig
	External ExternalConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int // requests per second, global
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

// SNSConfig drives the AWS SNS SMS channel. The channel counts as
// configured only when a region is set; credentials come from the default
// AWS chain.
type SNSConfig struct {
	Region   string
	SenderID string
}

type MonitorConfig struct {
	Enabled         bool
	Interval        time.Duration
	WorkerCount     int
	BufferSize      int
	DefaultRainfall float64 // assumed intensity when live weather is unavailable
}

type ExplainConfig struct {
	CacheSize   int
	CacheTTL    time.Duration
	MinInterval time.Duration // minimum gap between upstream generator calls
}

type ExternalConfig struct {
	ElevationURL string
	ForecastURL  string
	OverpassURL  string
	NominatimURL string
	GNewsURL     string
	GNewsAPIKey  string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			From:     getEnv("SMTP_FROM", "Kavach Alerts <alerts@kavach.local>"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},
		SNS: SNSConfig{
			Region:   getEnv("SNS_REGION", ""),
			SenderID: getEnv("SNS_SENDER_ID", "KAVACH"),
		},
		Monitor: MonitorConfig{
			Enabled:         getEnvBool("MONITOR_ENABLED", false),
			Interval:        getEnvDuration("MONITOR_INTERVAL", 15*time.Minute),
			WorkerCount:     getEnvInt("MONITOR_WORKER_COUNT", 2),
			BufferSize:      getEnvInt("MONITOR_BUFFER_SIZE", 20),
			DefaultRainfall: getEnvFloat("MONITOR_DEFAULT_RAINFALL", 50),
		},
		Explain: ExplainConfig{
			CacheSize:   getEnvInt("EXPLAIN_CACHE_SIZE", 128),
			CacheTTL:    getEnvDuration("EXPLAIN_CACHE_TTL", 30*time.Minute),
			MinInterval: getEnvDuration("EXPLAIN_MIN_INTERVAL", 5*time.Second),
		},
		External: ExternalConfig{
			ElevationURL: getEnv("ELEVATION_URL", "https://api.open-meteo.com/v1/elevation"),
			ForecastURL:  getEnv("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
			OverpassURL:  getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
			NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org/reverse"),
			GNewsURL:     getEnv("GNEWS_URL", "https://gnews.io/api/v4/search"),
			GNewsAPIKey:  getEnv("GNEWS_API_KEY", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("invalid rate limit: %d", c.Server.RateLimit)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Monitor.Enabled && c.Monitor.Interval < time.Minute {
		return fmt.Errorf("monitor interval must be at least 1 minute")
	}
	if c.Explain.CacheSize < 1 {
		return fmt.Errorf("invalid explain cache size: %d", c.Explain.CacheSize)
	}

	return nil
}

// SMTPConfigured reports whether the email channel has a provider to talk to.
func (c *Config) SMTPConfigured() bool {
	return c.SMTP.Host != ""
}

// SNSConfigured reports whether the SMS channel has a provider to talk to.
func (c *Config) SNSConfigured() bool {
	return c.SNS.Region != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
