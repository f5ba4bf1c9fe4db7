package tts

import "errors"

// Common TTS errors.
var (
	// ErrEmptyText is returned when the cleaned text is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyAudio is returned when a provider answered but produced no audio.
	ErrEmptyAudio = errors.New("provider returned no audio")

	// ErrCredentialRejected is returned when the account token was refused.
	ErrCredentialRejected = errors.New("credential rejected by provider")

	// ErrProviderDisabled is returned for providers that are switched off or
	// missing credentials.
	ErrProviderDisabled = errors.New("provider disabled")

	// ErrSynthesisFailed is returned when TTS synthesis fails.
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// ErrNoProviders is returned by an orchestrator with nothing to try.
	ErrNoProviders = errors.New("no speech providers configured")
)

// SynthesisError provides detailed error information from TTS providers.
type SynthesisError struct {
	// Provider is the TTS provider that returned the error.
	Provider string

	// Code is the provider-specific error code or HTTP status.
	Code string

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error

	// Retryable indicates if the error is transient and retry may succeed.
	Retryable bool
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	if e.Cause != nil {
		return e.Provider + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Provider + ": " + e.Message
}

// Unwrap returns the underlying error.
func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// NewSynthesisError creates a new SynthesisError.
func NewSynthesisError(provider, code, message string, cause error, retryable bool) *SynthesisError {
	return &SynthesisError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: retryable,
	}
}
