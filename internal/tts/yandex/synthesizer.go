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
	"time"

	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

// Synthesizer calls the SpeechKit v3 utteranceSynthesis endpoint. It holds
// no per-call state.
type Synthesizer struct {
	url      string
	folderID string
	client   *http.Client
	logger   *slog.Logger
}

// NewSynthesizer uses cfg.TTSURL, cfg.FolderID, cfg.Timeout and cfg.Logger.
func NewSynthesizer(cfg Config, client *http.Client) *Synthesizer {
	cfg = cfg.withDefaults()
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Synthesizer{url: cfg.TTSURL, folderID: cfg.FolderID, client: client, logger: cfg.Logger}
}

type synthesisRequest struct {
	Text                      string      `json:"text"`
	Hints                     []voiceHint `json:"hints,omitempty"`
	OutputAudioSpec           audioSpec   `json:"outputAudioSpec"`
	LoudnessNormalizationType string      `json:"loudnessNormalizationType"`
	UnsafeMode                bool        `json:"unsafeMode"`
}

type voiceHint struct {
	Voice string `json:"voice"`
}

type audioSpec struct {
	ContainerAudio struct {
		ContainerAudioType string `json:"containerAudioType"`
	} `json:"containerAudio"`
}

// Synthesize renders text with the given IAM token and returns the
// concatenated audio. A response without a single audio fragment is an error.
func (s *Synthesizer) Synthesize(ctx context.Context, text, token, voice string, format tts.AudioFormat) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, tts.ErrEmptyText
	}
	start := time.Now()

	reqBody := synthesisRequest{
		Text:                      text,
		LoudnessNormalizationType: "LUFS",
		UnsafeMode:                true,
	}
	if voice != "" {
		reqBody.Hints = []voiceHint{{Voice: voice}}
	}
	reqBody.OutputAudioSpec.ContainerAudio.ContainerAudioType = strings.ToUpper(format.Name)

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-folder-id", s.folderID)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, tts.NewSynthesisError(providerName, "", "request failed", err, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		s.logger.Error("tts.yandex.synthesize.http_error",
			"status", resp.StatusCode,
			"body", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		cause := tts.ErrSynthesisFailed
		if resp.StatusCode == http.StatusUnauthorized {
			cause = tts.ErrCredentialRejected
		}
		return nil, tts.NewSynthesisError(providerName, strconv.Itoa(resp.StatusCode),
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
			cause, resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError)
	}

	stream := newChunkStream(resp.Body)
	audio, err := collect(stream)
	if err != nil {
		return nil, tts.NewSynthesisError(providerName, "", "read audio stream", err, true)
	}
	if stream.Skipped() > 0 {
		s.logger.Warn("tts.yandex.synthesize.skipped_lines", "skipped", stream.Skipped())
	}
	if len(audio) == 0 {
		return nil, tts.NewSynthesisError(providerName, "", "no audio chunks in response", tts.ErrEmptyAudio, false)
	}

	s.logger.Debug("tts.yandex.synthesize.ok",
		"bytes", len(audio),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return audio, nil
}
