package transcriptstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/models"
)

// MemoryStore keeps transcripts in process memory. Contents are lost on
// restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.Transcript
	seq     []int64
	next    int64
	issued  map[uuid.UUID]struct{}
	opts    options
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		issued: make(map[uuid.UUID]struct{}),
		opts:   buildOptions(opts),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, text, language string) (*models.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.opts.newID()
	for {
		if _, used := s.issued[id]; !used && id != uuid.Nil {
			break
		}
		id = uuid.New()
	}
	s.issued[id] = struct{}{}

	now := s.opts.timestamp()
	rec := models.Transcript{
		ID:        id,
		Text:      text,
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.next++
	s.records = append(s.records, rec)
	s.seq = append(s.seq, s.next)

	return &rec, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]models.Transcript, error) {
	s.mu.RLock()
	records := make([]models.Transcript, len(s.records))
	seq := make([]int64, len(s.seq))
	copy(records, s.records)
	copy(seq, s.seq)
	s.mu.RUnlock()

	sortNewestFirst(records, seq)
	return records, nil
}

func (s *MemoryStore) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.seq = append(s.seq[:i], s.seq[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }
