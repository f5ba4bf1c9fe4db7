// Package yandex implements the preferred speech provider on top of Yandex
// SpeechKit v3, authenticated with IAM tokens exchanged for an OAuth token.
package yandex

import (
	"context"
	"errors"
	"net/http"

	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

// Provider composes a CredentialCache and a Synthesizer into a tts.Provider.
type Provider struct {
	cfg    Config
	format tts.AudioFormat
	creds  *CredentialCache
	synth  *Synthesizer
}

// Option configures the Provider.
type Option func(*providerOptions)

type providerOptions struct {
	client      *http.Client
	cacheOpts   []CacheOption
	credentials *CredentialCache
}

// WithClient sets the HTTP client used for synthesis calls.
func WithClient(client *http.Client) Option {
	return func(o *providerOptions) { o.client = client }
}

// WithCredentialCache shares an existing cache instead of building one.
func WithCredentialCache(c *CredentialCache) Option {
	return func(o *providerOptions) { o.credentials = c }
}

// WithCacheOptions passes options to the CredentialCache built by New.
func WithCacheOptions(opts ...CacheOption) Option {
	return func(o *providerOptions) { o.cacheOpts = append(o.cacheOpts, opts...) }
}

// New creates the provider. Unknown formats fall back to OGG_OPUS.
func New(cfg Config, opts ...Option) *Provider {
	cfg = cfg.withDefaults()
	var po providerOptions
	for _, o := range opts {
		o(&po)
	}

	format, ok := tts.FormatByName(cfg.Format)
	if !ok {
		cfg.Logger.Warn("tts.yandex.format.unknown", "format", cfg.Format, "using", tts.FormatOggOpus.Name)
		format = tts.FormatOggOpus
	}

	creds := po.credentials
	if creds == nil {
		creds = NewCredentialCache(cfg, po.cacheOpts...)
	}
	return &Provider{
		cfg:    cfg,
		format: format,
		creds:  creds,
		synth:  NewSynthesizer(cfg, po.client),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return providerName }

// Format returns the container produced by Synthesize.
func (p *Provider) Format() tts.AudioFormat { return p.format }

// Enabled reports whether the provider is switched on and has credentials.
func (p *Provider) Enabled() bool {
	return p.cfg.Enabled && p.cfg.OAuthToken != "" && p.cfg.FolderID != ""
}

// Synthesize obtains an IAM token and renders text.
func (p *Provider) Synthesize(ctx context.Context, text string, opts tts.Options) ([]byte, error) {
	if !p.Enabled() {
		return nil, tts.ErrProviderDisabled
	}
	token, err := p.creds.Token(ctx)
	if err != nil {
		return nil, err
	}

	voice := p.cfg.Voice
	if opts.Voice != "" {
		voice = opts.Voice
	}
	audio, err := p.synth.Synthesize(ctx, text, token, voice, p.format)
	if errors.Is(err, tts.ErrCredentialRejected) {
		// next call exchanges a fresh token
		p.creds.Invalidate()
	}
	return audio, err
}
