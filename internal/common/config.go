package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Speech   SpeechConfig   `yaml:"speech"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`
}

// StorageConfig holds filesystem locations
type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
	AudioDir  string `yaml:"audio_dir"`
	InboxDir  string `yaml:"inbox_dir"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// SpeechConfig holds the TTS provider settings
type SpeechConfig struct {
	Yandex    YandexConfig `yaml:"yandex"`
	Google    GoogleConfig `yaml:"google"`
	Prerender bool         `yaml:"prerender"`
	Workers   int          `yaml:"workers"`
}

// YandexConfig configures the preferred SpeechKit provider.
type YandexConfig struct {
	Enabled          bool          `yaml:"enabled"`
	OAuthToken       string        `yaml:"oauth_token"`
	FolderID         string        `yaml:"folder_id"`
	Voice            string        `yaml:"voice"`
	Format           string        `yaml:"format"`
	IAMURL           string        `yaml:"iam_url"`
	TTSURL           string        `yaml:"tts_url"`
	Timeout          time.Duration `yaml:"timeout"`
	AuthTimeout      time.Duration `yaml:"auth_timeout"`
	TokenFallbackTTL time.Duration `yaml:"token_fallback_ttl"`
}

// Configured reports whether the provider is switched on and has credentials.
func (c YandexConfig) Configured() bool {
	return c.Enabled && c.OAuthToken != "" && c.FolderID != ""
}

// GoogleConfig configures the fallback translate-TTS provider.
type GoogleConfig struct {
	Lang    string        `yaml:"lang"`
	Slow    bool          `yaml:"slow"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	RPS     float64       `yaml:"rps"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             "file:order_assistant.db",
			MaxConns:        20,
			MinConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Server: ServerConfig{
			GRPCAddr: ":8080",
			HTTPAddr: ":8081",
		},
		Storage: StorageConfig{
			UploadDir: "uploads",
			AudioDir:  "static/audio",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Speech: SpeechConfig{
			Yandex: YandexConfig{
				Voice:            "jane",
				Format:           "OGG_OPUS",
				IAMURL:           "https://iam.api.cloud.yandex.net/iam/v1/tokens",
				TTSURL:           "https://tts.api.cloud.yandex.net/tts/v3/utteranceSynthesis",
				Timeout:          30 * time.Second,
				AuthTimeout:      10 * time.Second,
				TokenFallbackTTL: 12 * time.Hour,
			},
			Google: GoogleConfig{
				Lang:    "ru",
				BaseURL: "https://translate.google.com",
				Timeout: 15 * time.Second,
				RPS:     5,
			},
			Workers: 4,
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file at
// path, and environment variables, in that order of precedence (env wins).
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)

	c.Storage.UploadDir = getEnv("UPLOAD_DIR", c.Storage.UploadDir)
	c.Storage.AudioDir = getEnv("AUDIO_DIR", c.Storage.AudioDir)
	c.Storage.InboxDir = getEnv("INBOX_DIR", c.Storage.InboxDir)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	y := &c.Speech.Yandex
	y.Enabled = getEnvAsBool("YANDEX_TTS_ENABLED", y.Enabled)
	y.OAuthToken = getEnv("YANDEX_TTS_OAUTH_TOKEN", y.OAuthToken)
	y.FolderID = getEnv("YANDEX_TTS_FOLDER_ID", y.FolderID)
	y.Voice = getEnv("YANDEX_TTS_VOICE", y.Voice)
	y.Format = getEnv("YANDEX_TTS_FORMAT", y.Format)
	y.IAMURL = getEnv("YANDEX_IAM_URL", y.IAMURL)
	y.TTSURL = getEnv("YANDEX_TTS_URL", y.TTSURL)
	y.Timeout = getEnvAsDuration("YANDEX_TTS_TIMEOUT", y.Timeout)
	y.AuthTimeout = getEnvAsDuration("YANDEX_AUTH_TIMEOUT", y.AuthTimeout)
	y.TokenFallbackTTL = getEnvAsDuration("YANDEX_TOKEN_FALLBACK_TTL", y.TokenFallbackTTL)

	g := &c.Speech.Google
	g.Lang = getEnv("GOOGLE_TTS_LANG", g.Lang)
	g.Slow = getEnvAsBool("GOOGLE_TTS_SLOW", g.Slow)
	g.BaseURL = getEnv("GOOGLE_TTS_URL", g.BaseURL)
	g.Timeout = getEnvAsDuration("GOOGLE_TTS_TIMEOUT", g.Timeout)
	g.RPS = getEnvAsFloat64("GOOGLE_TTS_RPS", g.RPS)

	c.Speech.Prerender = getEnvAsBool("TTS_PRERENDER", c.Speech.Prerender)
	c.Speech.Workers = getEnvAsInt("TTS_WORKERS", c.Speech.Workers)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Storage.AudioDir == "" || c.Storage.UploadDir == "" {
		return NewAppError("CONFIG_ERROR", "AUDIO_DIR and UPLOAD_DIR are required", ErrInvalidInput)
	}
	if c.Speech.Yandex.TokenFallbackTTL <= 0 {
		return NewAppError("CONFIG_ERROR", "YANDEX_TOKEN_FALLBACK_TTL must be positive", ErrInvalidInput)
	}
	if c.Speech.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "TTS_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
