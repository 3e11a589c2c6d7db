package stt

import (
	"context"
	"fmt"
	"io"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/config"
)

// TranscriptionRequest holds the parameters for audio transcription. When
// Reader is set it is used as the audio source and FilePath only names the
// upload; otherwise FilePath is opened from disk.
type TranscriptionRequest struct {
	FilePath string
	Reader   io.Reader
	Language string // BCP-47; reduced to its base language for the backend
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}

// New returns the provider selected by cfg.Backend.
func New(cfg config.STTConfig) (Provider, error) {
	switch cfg.Backend {
	case config.STTBackendOpenAI, "":
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}), nil
	case config.STTBackendLocal:
		return NewLocal(LocalConfig{BaseURL: cfg.LocalBaseURL}), nil
	default:
		return nil, fmt.Errorf("unknown stt backend %q", cfg.Backend)
	}
}
