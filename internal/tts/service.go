package tts

import (
	"context"
)

// AudioFormat is a container format a provider can produce.
type AudioFormat struct {
	// Name is the provider-facing identifier (e.g. "OGG_OPUS").
	Name string
	// Ext is the file extension including the dot.
	Ext string
	// MIMEType is served with the file.
	MIMEType string
}

var (
	// FormatOggOpus is Opus audio in an Ogg container.
	FormatOggOpus = AudioFormat{Name: "OGG_OPUS", Ext: ".ogg", MIMEType: "audio/ogg"}
	// FormatMP3 is MPEG layer III audio.
	FormatMP3 = AudioFormat{Name: "MP3", Ext: ".mp3", MIMEType: "audio/mpeg"}
	// FormatWAV is uncompressed PCM in a WAV container.
	FormatWAV = AudioFormat{Name: "WAV", Ext: ".wav", MIMEType: "audio/wav"}
)

// FormatByName resolves a configured format name, case-insensitive.
func FormatByName(name string) (AudioFormat, bool) {
	for _, f := range []AudioFormat{FormatOggOpus, FormatMP3, FormatWAV} {
		if equalFold(f.Name, name) {
			return f, true
		}
	}
	return AudioFormat{}, false
}

// Options adjusts a single synthesis call.
type Options struct {
	// Voice overrides the provider's configured voice when non-empty.
	Voice string
}

// Provider renders text into audio bytes.
type Provider interface {
	// Name returns the provider identifier (for logging and metrics).
	Name() string

	// Format is the container the returned bytes are encoded in.
	Format() AudioFormat

	// Enabled reports whether the provider is configured well enough to try.
	Enabled() bool

	// Synthesize converts text to a complete audio payload. It never returns
	// an empty payload with a nil error.
	Synthesize(ctx context.Context, text string, opts Options) ([]byte, error)
}
