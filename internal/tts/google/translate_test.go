package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

func TestProvider_Synthesize(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_tts", r.URL.Path)
		q := r.URL.Query()
		mu.Lock()
		queries = append(queries, map[string]string{
			"q": q.Get("q"), "tl": q.Get("tl"), "idx": q.Get("idx"),
			"total": q.Get("total"), "client": q.Get("client"), "ttsspeed": q.Get("ttsspeed"),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3[" + q.Get("idx") + "]"))
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, Slow: true}, WithLimiter(rate.NewLimiter(rate.Inf, 1)))
	text := strings.Repeat("молоко ", 20) + "хлеб"

	audio, err := p.Synthesize(context.Background(), text, tts.Options{})
	require.NoError(t, err)
	assert.Equal(t, "mp3[0]mp3[1]", string(audio))

	require.Len(t, queries, 2)
	assert.Equal(t, "ru", queries[0]["tl"])
	assert.Equal(t, "tw-ob", queries[0]["client"])
	assert.Equal(t, "2", queries[0]["total"])
	assert.Equal(t, "0.24", queries[0]["ttsspeed"])
	assert.Equal(t, text, queries[0]["q"]+" "+queries[1]["q"])

	assert.Equal(t, "google", p.Name())
	assert.Equal(t, tts.FormatMP3, p.Format())
	assert.True(t, p.Enabled())
}

func TestProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Synthesize(context.Background(), "Чай", tts.Options{})
	var se *tts.SynthesisError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "429", se.Code)
	assert.True(t, se.Retryable)
}

func TestProvider_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Synthesize(context.Background(), "Чай", tts.Options{})
	require.ErrorIs(t, err, tts.ErrEmptyAudio)
}

func TestProvider_EmptyText(t *testing.T) {
	_, err := New(Config{}).Synthesize(context.Background(), "   ", tts.Options{})
	require.ErrorIs(t, err, tts.ErrEmptyText)
}

func TestSplitText(t *testing.T) {
	assert.Empty(t, SplitText("  ", 100))
	assert.Equal(t, []string{"Заказ номер 7"}, SplitText("Заказ  номер\n7", 100))

	long := strings.Repeat("ж", 250)
	parts := SplitText(long, 100)
	require.Len(t, parts, 3)
	assert.Equal(t, 100, utf8.RuneCountInString(parts[0]))
	assert.Equal(t, 50, utf8.RuneCountInString(parts[2]))

	for _, c := range SplitText(strings.Repeat("слово ", 60), 100) {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
	}
}
