// Package tts turns short announcement texts into audio files.
//
// A Provider renders text to bytes in a single container format. The
// Orchestrator walks an ordered list of providers, writing the first
// successful result to disk with the extension of the provider that produced
// it. Provider failures other than the last are logged and counted, never
// returned.
package tts
