package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/singleflight"

	"github.com/joseph-ayodele/order-assistant/internal/metrics"
	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

// codeUnauthenticated is the gRPC-style code IAM returns for a bad or expired
// OAuth token.
const codeUnauthenticated = 16

const maxErrorBody = 4 << 10

var iamResponseSchema = jsonschema.MustCompileString("iam_token_response.json", `{
	"type": "object",
	"required": ["iamToken"],
	"properties": {
		"iamToken":  {"type": "string", "minLength": 1},
		"expiresAt": {"type": "string"}
	}
}`)

// Token is a short-lived IAM bearer token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// CredentialCache exchanges the OAuth token for IAM tokens and reuses each one
// until it expires. Reads of a valid token take no lock; at most one exchange
// runs at a time.
type CredentialCache struct {
	oauthToken  string
	url         string
	client      *http.Client
	fallbackTTL time.Duration
	now         func() time.Time
	logger      *slog.Logger

	token atomic.Pointer[Token]
	group singleflight.Group
}

// CacheOption configures a CredentialCache.
type CacheOption func(*CredentialCache)

// WithCacheClient sets a custom HTTP client.
func WithCacheClient(client *http.Client) CacheOption {
	return func(c *CredentialCache) { c.client = client }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CredentialCache) { c.now = now }
}

// NewCredentialCache builds a cache from cfg. Only OAuthToken, IAMURL,
// AuthTimeout, TokenFallbackTTL and Logger are used.
func NewCredentialCache(cfg Config, opts ...CacheOption) *CredentialCache {
	cfg = cfg.withDefaults()
	c := &CredentialCache{
		oauthToken:  cfg.OAuthToken,
		url:         cfg.IAMURL,
		client:      &http.Client{Timeout: cfg.AuthTimeout},
		fallbackTTL: cfg.TokenFallbackTTL,
		now:         time.Now,
		logger:      cfg.Logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Token returns a token whose expiry is strictly after now, exchanging the
// OAuth token when the cached one is missing or stale.
func (c *CredentialCache) Token(ctx context.Context) (string, error) {
	if t := c.valid(); t != nil {
		return t.Value, nil
	}

	// The exchange is shared by every waiting caller, so it must not be
	// cancelled by whichever caller happened to start it.
	ch := c.group.DoChan("iam", func() (any, error) {
		if t := c.valid(); t != nil {
			return t, nil
		}
		t, err := c.exchange(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.token.Store(t)
		return t, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		t := res.Val.(*Token)
		if !c.now().Before(t.ExpiresAt) {
			return "", tts.NewSynthesisError(providerName, "", "iam token expired", tts.ErrSynthesisFailed, true)
		}
		return t.Value, nil
	}
}

// Invalidate drops the cached token so the next call exchanges again.
func (c *CredentialCache) Invalidate() {
	c.token.Store(nil)
}

func (c *CredentialCache) valid() *Token {
	t := c.token.Load()
	if t == nil || !c.now().Before(t.ExpiresAt) {
		return nil
	}
	return t
}

func (c *CredentialCache) exchange(ctx context.Context) (*Token, error) {
	start := time.Now()

	body, err := json.Marshal(map[string]string{"yandexPassportOauthToken": c.oauthToken})
	if err != nil {
		return nil, fmt.Errorf("marshal iam request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create iam request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordCredentialRefresh(metrics.StatusError)
		return nil, tts.NewSynthesisError(providerName, "", "iam request failed", err, true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordCredentialRefresh(metrics.StatusError)
		return nil, tts.NewSynthesisError(providerName, strconv.Itoa(resp.StatusCode), "read iam response", err, true)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.handleError(resp.StatusCode, raw)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		metrics.RecordCredentialRefresh(metrics.StatusError)
		return nil, tts.NewSynthesisError(providerName, "", "decode iam response", err, false)
	}
	if err := iamResponseSchema.Validate(doc); err != nil {
		metrics.RecordCredentialRefresh(metrics.StatusError)
		return nil, tts.NewSynthesisError(providerName, "", "iam response does not match schema", err, false)
	}

	var out struct {
		IAMToken  string `json:"iamToken"`
		ExpiresAt string `json:"expiresAt"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		metrics.RecordCredentialRefresh(metrics.StatusError)
		return nil, tts.NewSynthesisError(providerName, "", "decode iam response", err, false)
	}

	expiresAt, ok := ParseExpiresAt(out.ExpiresAt)
	if !ok {
		expiresAt = c.now().Add(c.fallbackTTL)
		c.logger.Warn("tts.yandex.iam.expiry_unparsed",
			"expires_at_raw", out.ExpiresAt,
			"fallback_ttl", c.fallbackTTL.String(),
		)
	}

	if now := c.now(); !now.Before(expiresAt) {
		metrics.RecordCredentialRefresh(metrics.StatusError)
		c.logger.Error("tts.yandex.iam.expired",
			"expires_at", expiresAt.Format(time.RFC3339),
			"now", now.Format(time.RFC3339),
		)
		return nil, tts.NewSynthesisError(providerName, "", "iam token expired on arrival", tts.ErrSynthesisFailed, true)
	}

	metrics.RecordCredentialRefresh(metrics.StatusSuccess)
	c.logger.Info("tts.yandex.iam.ok",
		"expires_at", expiresAt.Format(time.RFC3339),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Token{Value: out.IAMToken, ExpiresAt: expiresAt}, nil
}

func (c *CredentialCache) handleError(status int, raw []byte) error {
	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &errResp)

	if errResp.Code == codeUnauthenticated {
		metrics.RecordCredentialRefresh(metrics.StatusRejected)
		c.logger.Error("tts.yandex.iam.rejected", "status", status, "message", errResp.Message)
		return tts.NewSynthesisError(providerName, strconv.Itoa(codeUnauthenticated), "oauth token rejected", tts.ErrCredentialRejected, false)
	}

	metrics.RecordCredentialRefresh(metrics.StatusError)
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	c.logger.Error("tts.yandex.iam.http_error", "status", status, "body", string(raw))
	return tts.NewSynthesisError(providerName, strconv.Itoa(status),
		fmt.Sprintf("iam exchange failed: status %d: %s", status, strings.TrimSpace(string(raw))),
		tts.ErrSynthesisFailed, status >= http.StatusInternalServerError)
}

// ParseExpiresAt reads the IAM expiresAt timestamp. RFC 3339 with up to
// nanosecond precision is tried first; otherwise the fraction and a trailing
// UTC marker are dropped and the rest is read as UTC.
func ParseExpiresAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}

	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "Z")
	s = strings.TrimSuffix(s, "+00:00")
	s = strings.TrimSuffix(s, "-00:00")
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}
