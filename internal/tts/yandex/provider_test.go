package yandex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

type fakeCloud struct {
	iam, synth *httptest.Server
	iamCalls   atomic.Int32
	lastBody   map[string]any
	lastHeader http.Header
}

func newFakeCloud(t *testing.T, synthHandler http.HandlerFunc) *fakeCloud {
	t.Helper()
	fc := &fakeCloud{}
	fc.iam = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fc.iamCalls.Add(1)
		_, _ = w.Write([]byte(`{"iamToken":"iam-123","expiresAt":"2999-01-01T00:00:00Z"}`))
	}))
	fc.synth = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fc.lastHeader = r.Header.Clone()
		fc.lastBody = map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&fc.lastBody)
		synthHandler(w, r)
	}))
	t.Cleanup(fc.iam.Close)
	t.Cleanup(fc.synth.Close)
	return fc
}

func (fc *fakeCloud) config() Config {
	return Config{
		Enabled:    true,
		OAuthToken: "oauth-secret",
		FolderID:   "b1g-folder",
		IAMURL:     fc.iam.URL,
		TTSURL:     fc.synth.URL,
	}
}

func TestProvider_Synthesize(t *testing.T) {
	fc := newFakeCloud(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(chunkLine("Og") + "\n" + chunkLine("gS") + "\n"))
	})
	p := New(fc.config())

	audio, err := p.Synthesize(context.Background(), "Заказ номер 7", tts.Options{})
	require.NoError(t, err)
	assert.Equal(t, "OggS", string(audio))
	assert.Equal(t, tts.FormatOggOpus, p.Format())
	assert.Equal(t, "yandex", p.Name())

	assert.Equal(t, "Bearer iam-123", fc.lastHeader.Get("Authorization"))
	assert.Equal(t, "b1g-folder", fc.lastHeader.Get("x-folder-id"))
	assert.Equal(t, "Заказ номер 7", fc.lastBody["text"])
	assert.Equal(t, "LUFS", fc.lastBody["loudnessNormalizationType"])
	assert.Equal(t, true, fc.lastBody["unsafeMode"])
	assert.Equal(t, []any{map[string]any{"voice": "jane"}}, fc.lastBody["hints"])
	spec := fc.lastBody["outputAudioSpec"].(map[string]any)["containerAudio"].(map[string]any)
	assert.Equal(t, "OGG_OPUS", spec["containerAudioType"])

	_, err = p.Synthesize(context.Background(), "ещё раз", tts.Options{Voice: "ermil"})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"voice": "ermil"}}, fc.lastBody["hints"])
	assert.EqualValues(t, 1, fc.iamCalls.Load())
}

func TestProvider_EmptyStream(t *testing.T) {
	fc := newFakeCloud(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{}}` + "\n"))
	})

	_, err := New(fc.config()).Synthesize(context.Background(), "Чай", tts.Options{})
	require.ErrorIs(t, err, tts.ErrEmptyAudio)
}

func TestProvider_HTTPError(t *testing.T) {
	fc := newFakeCloud(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad voice", http.StatusBadRequest)
	})

	_, err := New(fc.config()).Synthesize(context.Background(), "Чай", tts.Options{})
	var se *tts.SynthesisError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "400", se.Code)
	assert.True(t, strings.Contains(se.Message, "bad voice"))
}

func TestProvider_UnauthorizedInvalidatesToken(t *testing.T) {
	var n atomic.Int32
	fc := newFakeCloud(t, func(w http.ResponseWriter, _ *http.Request) {
		if n.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(chunkLine("ok")))
	})
	p := New(fc.config())

	_, err := p.Synthesize(context.Background(), "Чай", tts.Options{})
	require.ErrorIs(t, err, tts.ErrCredentialRejected)

	_, err = p.Synthesize(context.Background(), "Чай", tts.Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, fc.iamCalls.Load())
}

func TestProvider_Disabled(t *testing.T) {
	p := New(Config{Enabled: true, OAuthToken: "x"})
	assert.False(t, p.Enabled())
	_, err := p.Synthesize(context.Background(), "Чай", tts.Options{})
	assert.ErrorIs(t, err, tts.ErrProviderDisabled)
}

type mp3Fallback struct{}

func (mp3Fallback) Name() string            { return "google" }
func (mp3Fallback) Format() tts.AudioFormat { return tts.FormatMP3 }
func (mp3Fallback) Enabled() bool           { return true }
func (mp3Fallback) Synthesize(context.Context, string, tts.Options) ([]byte, error) {
	return []byte("ID3"), nil
}

func TestOrchestrator_CredentialFailureFallsBack(t *testing.T) {
	iam := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":16,"message":"expired"}`))
	}))
	defer iam.Close()

	preferred := New(Config{Enabled: true, OAuthToken: "o", FolderID: "f", IAMURL: iam.URL, TTSURL: "http://127.0.0.1:0"})
	o := tts.NewOrchestrator([]tts.Provider{preferred, mp3Fallback{}}, nil)

	out := filepath.Join(t.TempDir(), "order_777.ogg")
	art, err := o.SynthesizeToFile(context.Background(), "Заказ номер 777", out, tts.Options{})
	require.NoError(t, err)
	assert.Equal(t, "google", art.Provider)
	assert.Equal(t, ".mp3", filepath.Ext(art.Path))
}
