package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name    string
	format  AudioFormat
	enabled bool
	audio   []byte
	err     error
	calls   atomic.Int32
	gotText string
}

func (f *fakeProvider) Name() string        { return f.name }
func (f *fakeProvider) Format() AudioFormat { return f.format }
func (f *fakeProvider) Enabled() bool       { return f.enabled }

func (f *fakeProvider) Synthesize(_ context.Context, text string, _ Options) ([]byte, error) {
	f.calls.Add(1)
	f.gotText = text
	return f.audio, f.err
}

func TestOrchestrator_PreferredSucceeds(t *testing.T) {
	preferred := &fakeProvider{name: "yandex", format: FormatOggOpus, enabled: true, audio: []byte("ogg")}
	fallback := &fakeProvider{name: "google", format: FormatMP3, enabled: true, audio: []byte("mp3")}
	o := NewOrchestrator([]Provider{preferred, fallback}, nil)

	out := filepath.Join(t.TempDir(), "nested", "order_7.mp3")
	art, err := o.SynthesizeToFile(context.Background(), "Заказ   номер\n7", out, Options{})
	require.NoError(t, err)

	assert.Equal(t, "yandex", art.Provider)
	assert.Equal(t, filepath.Join(filepath.Dir(out), "order_7.ogg"), art.Path)
	assert.Equal(t, "Заказ номер 7", preferred.gotText)
	assert.Zero(t, fallback.calls.Load())

	data, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("ogg"), data)
}

func TestOrchestrator_FallbackOnFailure(t *testing.T) {
	preferred := &fakeProvider{name: "yandex", format: FormatOggOpus, enabled: true, err: ErrCredentialRejected}
	fallback := &fakeProvider{name: "google", format: FormatMP3, enabled: true, audio: []byte("mp3")}
	o := NewOrchestrator([]Provider{preferred, fallback}, nil)

	out := filepath.Join(t.TempDir(), "item_3.ogg")
	art, err := o.SynthesizeToFile(context.Background(), "Хлеб", out, Options{})
	require.NoError(t, err)

	assert.Equal(t, "google", art.Provider)
	assert.Equal(t, ".mp3", filepath.Ext(art.Path))
	assert.Equal(t, 3, art.Size)
	assert.EqualValues(t, 1, preferred.calls.Load())
	assert.NoFileExists(t, out)
}

func TestOrchestrator_EmptyAudioFallsBack(t *testing.T) {
	preferred := &fakeProvider{name: "yandex", format: FormatOggOpus, enabled: true}
	fallback := &fakeProvider{name: "google", format: FormatMP3, enabled: true, audio: []byte("mp3")}

	art, err := NewOrchestrator([]Provider{preferred, fallback}, nil).
		SynthesizeToFile(context.Background(), "Чай", filepath.Join(t.TempDir(), "a"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "google", art.Provider)
}

func TestOrchestrator_DisabledSkipped(t *testing.T) {
	preferred := &fakeProvider{name: "yandex", format: FormatOggOpus, enabled: false, audio: []byte("ogg")}
	fallback := &fakeProvider{name: "google", format: FormatMP3, enabled: true, audio: []byte("mp3")}
	o := NewOrchestrator([]Provider{preferred, fallback}, nil)

	assert.Equal(t, []string{"google"}, o.Providers())
	art, err := o.SynthesizeToFile(context.Background(), "Чай", filepath.Join(t.TempDir(), "a.ogg"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "google", art.Provider)
	assert.Zero(t, preferred.calls.Load())
}

func TestOrchestrator_FinalFailureSurfaced(t *testing.T) {
	boom := errors.New("boom")
	preferred := &fakeProvider{name: "yandex", format: FormatOggOpus, enabled: true, err: ErrCredentialRejected}
	fallback := &fakeProvider{name: "google", format: FormatMP3, enabled: true, err: boom}

	_, err := NewOrchestrator([]Provider{preferred, fallback}, nil).
		SynthesizeToFile(context.Background(), "Чай", filepath.Join(t.TempDir(), "a"), Options{})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrCredentialRejected)
}

func TestOrchestrator_Guards(t *testing.T) {
	p := &fakeProvider{name: "google", format: FormatMP3, enabled: true, audio: []byte("x")}

	_, err := NewOrchestrator([]Provider{p}, nil).SynthesizeToFile(context.Background(), " \t", "a", Options{})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = NewOrchestrator(nil, nil).SynthesizeToFile(context.Background(), "Чай", "a", Options{})
	assert.ErrorIs(t, err, ErrNoProviders)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewOrchestrator([]Provider{p}, nil).SynthesizeToFile(ctx, "Чай", "a", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Соль и перец", CleanText("Соль&перец"))
	assert.Equal(t, "a b", CleanText("  a \n\t b  "))
	assert.Equal(t, "", CleanText("   "))
}

func TestWithExt(t *testing.T) {
	assert.Equal(t, "audio/order_1.ogg", WithExt("audio/order_1.mp3", ".ogg"))
	assert.Equal(t, "audio/item_2.mp3", WithExt("audio/item_2", ".mp3"))
	assert.Equal(t, "a.b/item.mp3", WithExt("a.b/item", ".mp3"))
}

func TestFormatByName(t *testing.T) {
	f, ok := FormatByName("ogg_opus")
	require.True(t, ok)
	assert.Equal(t, ".ogg", f.Ext)
	_, ok = FormatByName("flac")
	assert.False(t, ok)
}
