package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/models"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/queue"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/storage"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/stt"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/transcript"
)

type AudioTranscriber interface {
	Transcribe(ctx context.Context, bucket, name, language string) (*stt.TranscriptionResponse, error)
}

type TranscriptCreator interface {
	Create(ctx context.Context, req transcript.CreateRequest) (*models.Transcript, error)
}

// TranscribeWorker turns a stored upload into a persisted transcript.
type TranscribeWorker struct {
	audio       AudioTranscriber
	transcripts TranscriptCreator
}

func NewTranscribeWorker(audio AudioTranscriber, transcripts TranscriptCreator) *TranscribeWorker {
	return &TranscribeWorker{audio: audio, transcripts: transcripts}
}

func (w *TranscribeWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.AudioTranscribePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Path == "" {
		return fmt.Errorf("payload missing path: %w", asynq.SkipRetry)
	}

	slog.Info("transcribing upload", "path", payload.Path, "file_name", payload.FileName)

	resp, err := w.audio.Transcribe(ctx, payload.Bucket, payload.Path, payload.Language)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return fmt.Errorf("transcribe %s: %v: %w", payload.Path, err, asynq.SkipRetry)
		}
		return fmt.Errorf("transcribe %s: %w", payload.Path, err)
	}

	rec, err := w.transcripts.Create(ctx, transcript.CreateRequest{
		Text:     resp.Text,
		Language: payload.Language,
	})
	if err != nil {
		if errors.Is(err, transcript.ErrValidation) {
			slog.Warn("upload produced no text", "path", payload.Path)
			return fmt.Errorf("save transcript for %s: %v: %w", payload.Path, err, asynq.SkipRetry)
		}
		return fmt.Errorf("save transcript for %s: %w", payload.Path, err)
	}

	slog.Info("transcript saved", "path", payload.Path, "transcript_id", rec.ID)
	return nil
}
