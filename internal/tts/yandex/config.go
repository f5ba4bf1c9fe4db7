package yandex

import (
	"log/slog"
	"time"
)

const (
	providerName = "yandex"

	defaultIAMURL      = "https://iam.api.cloud.yandex.net/iam/v1/tokens"
	defaultTTSURL      = "https://tts.api.cloud.yandex.net/tts/v3/utteranceSynthesis"
	defaultVoice       = "jane"
	defaultTimeout     = 30 * time.Second
	defaultAuthTimeout = 10 * time.Second
	defaultFallbackTTL = 12 * time.Hour
)

// Config for the SpeechKit provider.
type Config struct {
	Enabled          bool
	OAuthToken       string        // long-lived account token exchanged for IAM tokens
	FolderID         string        // cloud folder billed for synthesis
	Voice            string        // default "jane"
	Format           string        // "OGG_OPUS" (default), "MP3" or "WAV"
	IAMURL           string        // token exchange endpoint
	TTSURL           string        // v3 utteranceSynthesis endpoint
	Timeout          time.Duration // synthesis http client timeout
	AuthTimeout      time.Duration // token exchange http client timeout
	TokenFallbackTTL time.Duration // validity assumed when expiresAt is unreadable
	Logger           *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Voice == "" {
		c.Voice = defaultVoice
	}
	if c.Format == "" {
		c.Format = "OGG_OPUS"
	}
	if c.IAMURL == "" {
		c.IAMURL = defaultIAMURL
	}
	if c.TTSURL == "" {
		c.TTSURL = defaultTTSURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = defaultAuthTimeout
	}
	if c.TokenFallbackTTL <= 0 {
		c.TokenFallbackTTL = defaultFallbackTTL
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
