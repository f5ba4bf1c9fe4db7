package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/order-assistant/internal/metrics"
)

// Artifact describes an audio file written by the Orchestrator.
type Artifact struct {
	Path     string
	Provider string
	Format   AudioFormat
	Size     int
}

// Orchestrator tries providers in order until one produces audio.
type Orchestrator struct {
	providers []Provider
	logger    *slog.Logger
}

// NewOrchestrator keeps the order of providers: the first is preferred and
// the last is the fallback of last resort.
func NewOrchestrator(providers []Provider, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{providers: providers, logger: logger}
}

// Providers returns the names of the enabled providers, in order.
func (o *Orchestrator) Providers() []string {
	var names []string
	for _, p := range o.providers {
		if p.Enabled() {
			names = append(names, p.Name())
		}
	}
	return names
}

// SynthesizeToFile renders text and writes it next to outputPath, replacing
// the extension with that of the provider that succeeded.
func (o *Orchestrator) SynthesizeToFile(ctx context.Context, text, outputPath string, opts Options) (*Artifact, error) {
	text = CleanText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	var enabled []Provider
	for _, p := range o.providers {
		if p.Enabled() {
			enabled = append(enabled, p)
		} else {
			o.logger.Debug("tts.provider.skip", "provider", p.Name(), "reason", "disabled")
		}
	}
	if len(enabled) == 0 {
		return nil, ErrNoProviders
	}

	var lastErr error
	for i, p := range enabled {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		art, err := o.try(ctx, p, text, outputPath, opts)
		if err == nil {
			return art, nil
		}
		lastErr = fmt.Errorf("%s: %w", p.Name(), err)

		if i < len(enabled)-1 {
			metrics.RecordFallback(p.Name())
			o.logger.Warn("tts.provider.fallback",
				"provider", p.Name(),
				"next", enabled[i+1].Name(),
				"err", err,
			)
		}
	}

	o.logger.Error("tts.synthesize.failed", "path", outputPath, "err", lastErr)
	return nil, lastErr
}

func (o *Orchestrator) try(ctx context.Context, p Provider, text, outputPath string, opts Options) (*Artifact, error) {
	start := time.Now()
	audio, err := p.Synthesize(ctx, text, opts)
	if err == nil && len(audio) == 0 {
		err = ErrEmptyAudio
	}
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordSynthesis(p.Name(), metrics.StatusError, elapsed.Seconds())
		return nil, err
	}
	metrics.RecordSynthesis(p.Name(), metrics.StatusSuccess, elapsed.Seconds())

	format := p.Format()
	path := WithExt(outputPath, format.Ext)
	if err := writeFileAtomic(path, audio); err != nil {
		return nil, fmt.Errorf("write audio: %w", err)
	}

	o.logger.Info("tts.synthesize.ok",
		"provider", p.Name(),
		"path", path,
		"bytes", len(audio),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return &Artifact{Path: path, Provider: p.Name(), Format: format, Size: len(audio)}, nil
}

// writeFileAtomic writes data through a temp file in the target directory so
// readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tts-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
