// Package audio accepts uploaded recordings, stores them and turns them into
// transcript text.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/langtag"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/models"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/queue"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/storage"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/stt"
)

var AllowedExtensions = []string{".mp3", ".wav", ".m4a", ".ogg"}

var (
	ErrUnsupportedType  = errors.New("only audio files are allowed (mp3, wav, m4a, ogg)")
	ErrTooLarge         = errors.New("audio file too large")
	ErrEmptyFile        = errors.New("no file uploaded")
	ErrTranscription    = errors.New("transcription failed")
	ErrAsyncUnavailable = errors.New("background transcription is not configured")
)

// Transcoder normalises audio into a format the STT backend accepts.
type Transcoder interface {
	ToWAV(ctx context.Context, input, tmpDir string) (string, error)
}

type Enqueuer interface {
	EnqueueAudioTranscribe(ctx context.Context, payload queue.AudioTranscribePayload) (string, error)
}

type Config struct {
	Bucket          string
	MaxBytes        int64
	DefaultLanguage string
}

type Service struct {
	storage    storage.Storage
	stt        stt.Provider
	transcoder Transcoder
	enqueuer   Enqueuer
	cfg        Config
	now        func() time.Time
}

// objectName keeps the millisecond prefix the browser client sorts by and
// adds a random suffix so uploads in the same millisecond do not collide.
func objectName(at time.Time, ext string) string {
	return fmt.Sprintf("%d-%s%s", at.UnixMilli(), uuid.NewString()[:8], ext)
}

// NewService wires the upload pipeline. transcoder and enqueuer are optional.
func NewService(store storage.Storage, provider stt.Provider, transcoder Transcoder, enqueuer Enqueuer, cfg Config) *Service {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = models.DefaultLanguage
	}
	return &Service{
		storage:    store,
		stt:        provider,
		transcoder: transcoder,
		enqueuer:   enqueuer,
		cfg:        cfg,
		now:        time.Now,
	}
}

type UploadRequest struct {
	FileName    string
	ContentType string
	Size        int64
	Data        io.Reader
	Language    string
	Async       bool
}

type UploadResult struct {
	Upload     models.AudioUpload
	Transcript string
	Language   string
	Detected   string
	Duration   float64
	TaskID     string
}

func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if req.Data == nil || req.FileName == "" {
		return nil, ErrEmptyFile
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	if !allowedExtension(ext) {
		return nil, ErrUnsupportedType
	}
	if req.Size > s.cfg.MaxBytes {
		return nil, ErrTooLarge
	}
	if req.Size == 0 {
		return nil, ErrEmptyFile
	}
	if req.Async && s.enqueuer == nil {
		return nil, ErrAsyncUnavailable
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadedAt := s.now().UTC()
	name := objectName(uploadedAt, ext)
	body := &limitReader{r: req.Data, remaining: s.cfg.MaxBytes}

	if err := s.storage.Upload(ctx, s.cfg.Bucket, name, body, contentType); err != nil {
		if errors.Is(err, ErrTooLarge) {
			return nil, ErrTooLarge
		}
		return nil, fmt.Errorf("store audio: %w", err)
	}

	lang := langtag.Canonical(req.Language, s.cfg.DefaultLanguage)
	result := &UploadResult{
		Upload: models.AudioUpload{
			FileName:    name,
			FilePath:    s.storage.GetPublicURL(s.cfg.Bucket, name),
			ContentType: contentType,
			SizeBytes:   body.read,
			UploadedAt:  uploadedAt,
		},
		Language: lang,
	}

	if req.Async {
		taskID, err := s.enqueuer.EnqueueAudioTranscribe(ctx, queue.AudioTranscribePayload{
			Bucket:   s.cfg.Bucket,
			Path:     name,
			FileName: req.FileName,
			Language: lang,
		})
		if err != nil {
			if delErr := s.storage.Delete(ctx, s.cfg.Bucket, name); delErr != nil {
				slog.Warn("failed to remove unscheduled upload", "object", name, "error", delErr)
			}
			return nil, fmt.Errorf("schedule transcription: %w", err)
		}
		result.TaskID = taskID
		return result, nil
	}

	resp, err := s.Transcribe(ctx, s.cfg.Bucket, name, lang)
	if err != nil {
		return nil, err
	}
	result.Transcript = resp.Text
	result.Detected = resp.Language
	result.Duration = resp.Duration
	return result, nil
}

// Transcribe fetches a stored audio object and runs it through the STT
// provider. Without a Transcoder the object is streamed straight to the
// provider; with one it is staged in a temp dir and converted first.
func (s *Service) Transcribe(ctx context.Context, bucket, name, language string) (*stt.TranscriptionResponse, error) {
	rc, err := s.storage.Download(ctx, bucket, name)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	defer rc.Close()

	req := stt.TranscriptionRequest{
		FilePath: filepath.Base(name),
		Reader:   rc,
		Language: language,
	}

	if s.transcoder != nil {
		tmpDir, err := os.MkdirTemp("", "stt-*")
		if err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		local := filepath.Join(tmpDir, filepath.Base(name))
		if err := writeFile(local, rc); err != nil {
			return nil, err
		}
		converted, err := s.transcoder.ToWAV(ctx, local, tmpDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTranscription, err)
		}
		req.FilePath, req.Reader = converted, nil
	}

	resp, err := s.stt.Transcribe(ctx, req)
	if err != nil {
		slog.Error("transcription failed", "provider", s.stt.Name(), "object", name, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTranscription, err)
	}
	return resp, nil
}

func allowedExtension(ext string) bool {
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create temp audio: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write temp audio: %w", err)
	}
	return f.Close()
}

// limitReader fails with ErrTooLarge once more than remaining bytes are read.
type limitReader struct {
	r         io.Reader
	remaining int64
	read      int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
