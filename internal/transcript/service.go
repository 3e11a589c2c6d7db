// Package transcript validates transcript requests and dispatches them to a
// transcriptstore.Store. It holds no state between calls.
package transcript

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/langtag"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/models"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/transcriptstore"
)

const (
	EventCreated = "transcript.created"
	EventDeleted = "transcript.deleted"
)

// Notifier receives lifecycle events after a change has been persisted.
// Publishing must not block the caller.
type Notifier interface {
	Publish(ctx context.Context, event string, payload interface{})
}

type Service struct {
	store           transcriptstore.Store
	notifier        Notifier
	defaultLanguage string
}

func NewService(store transcriptstore.Store, notifier Notifier, defaultLanguage string) *Service {
	if defaultLanguage == "" {
		defaultLanguage = models.DefaultLanguage
	}
	return &Service{
		store:           store,
		notifier:        notifier,
		defaultLanguage: defaultLanguage,
	}
}

type CreateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Transcript, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, validationError("text is required")
	}

	lang := langtag.Canonical(req.Language, s.defaultLanguage)

	t, err := s.store.Insert(ctx, text, lang)
	if err != nil {
		return nil, persistenceError("failed to save transcript", err)
	}

	s.publish(ctx, EventCreated, t)
	return t, nil
}

func (s *Service) List(ctx context.Context) ([]models.Transcript, error) {
	transcripts, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, persistenceError("failed to fetch transcripts", err)
	}
	return transcripts, nil
}

// Delete removes the transcript identified by rawID and returns its id.
func (s *Service) Delete(ctx context.Context, rawID string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return uuid.Nil, validationError("invalid transcript id")
	}

	removed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return uuid.Nil, persistenceError("failed to delete transcript", err)
	}
	if !removed {
		return uuid.Nil, &Error{Kind: KindNotFound, Message: "transcript not found"}
	}

	s.publish(ctx, EventDeleted, map[string]string{"id": id.String()})
	return id, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) publish(ctx context.Context, event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Publish(ctx, event, payload)
	}
}
