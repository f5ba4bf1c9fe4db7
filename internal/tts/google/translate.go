// Package google implements the always-available fallback speech provider on
// the public Google Translate TTS endpoint. It needs no credentials, produces
// MP3 and is paced by a client-side rate limiter.
package google

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

const (
	providerName = "google"

	defaultBaseURL = "https://translate.google.com"
	defaultLang    = "ru"
	defaultTimeout = 15 * time.Second
	defaultRPS     = 5

	// maxChunkRunes is the longest text the endpoint accepts per request.
	maxChunkRunes = 100

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Config for the Translate TTS provider.
type Config struct {
	Lang    string        // BCP 47 language, default "ru"
	Slow    bool          // slower speech rate
	BaseURL string        // default https://translate.google.com
	Timeout time.Duration // http client timeout per request
	RPS     float64       // request rate limit, default 5/s
	Logger  *slog.Logger
}

// Provider fetches MP3 audio one text chunk at a time.
type Provider struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures the Provider.
type Option func(*Provider)

// WithClient sets a custom HTTP client.
func WithClient(client *http.Client) Option {
	return func(p *Provider) { p.client = client }
}

// WithLimiter replaces the request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(p *Provider) { p.limiter = l }
}

func New(cfg Config, opts ...Option) *Provider {
	if cfg.Lang == "" {
		cfg.Lang = defaultLang
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	p := &Provider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		logger:  cfg.Logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return providerName }

// Format returns MP3.
func (p *Provider) Format() tts.AudioFormat { return tts.FormatMP3 }

// Enabled is always true.
func (p *Provider) Enabled() bool { return true }

// Synthesize splits text into chunks the endpoint accepts and concatenates the
// returned MP3 streams. Voice options are ignored.
func (p *Provider) Synthesize(ctx context.Context, text string, _ tts.Options) ([]byte, error) {
	chunks := SplitText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, tts.ErrEmptyText
	}
	start := time.Now()

	var audio []byte
	for i, chunk := range chunks {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		b, err := p.fetch(ctx, chunk, i, len(chunks))
		if err != nil {
			return nil, err
		}
		audio = append(audio, b...)
	}
	if len(audio) == 0 {
		return nil, tts.NewSynthesisError(providerName, "", "empty response", tts.ErrEmptyAudio, false)
	}

	p.logger.Debug("tts.google.synthesize.ok",
		"chunks", len(chunks),
		"bytes", len(audio),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return audio, nil
}

func (p *Provider) fetch(ctx context.Context, chunk string, idx, total int) ([]byte, error) {
	speed := "1"
	if p.cfg.Slow {
		speed = "0.24"
	}
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", p.cfg.Lang)
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
	q.Set("ttsspeed", speed)
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/translate_tts?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", strings.TrimRight(p.cfg.BaseURL, "/")+"/")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, tts.NewSynthesisError(providerName, "", "request failed", err, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, tts.NewSynthesisError(providerName, strconv.Itoa(resp.StatusCode),
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
			tts.ErrSynthesisFailed, resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tts.NewSynthesisError(providerName, "", "read audio", err, true)
	}
	return b, nil
}

// SplitText breaks text into pieces of at most max runes, preferring
// word and sentence boundaries. Words longer than max are cut.
func SplitText(text string, max int) []string {
	words := strings.Fields(text)
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, w := range words {
		for utf8.RuneCountInString(w) > max {
			flush()
			r := []rune(w)
			chunks = append(chunks, string(r[:max]))
			w = string(r[max:])
		}
		wl := utf8.RuneCountInString(w)
		if wl == 0 {
			continue
		}
		if curLen > 0 && curLen+1+wl > max {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
		if strings.ContainsAny(w[len(w)-1:], ".!?;") && curLen > max/2 {
			flush()
		}
	}
	flush()
	return chunks
}
