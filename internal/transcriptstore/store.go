// Package transcriptstore persists transcript records. Each backend owns
// identifier and timestamp assignment; callers never construct either.
package transcriptstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/models"
)

// ErrUnavailable is wrapped by every error a Store returns when the backing
// medium cannot be reached or rejects the operation.
var ErrUnavailable = errors.New("transcript storage unavailable")

type Store interface {
	// Insert persists a new record and returns it with its assigned
	// identifier and timestamps.
	Insert(ctx context.Context, text, language string) (*models.Transcript, error)
	// ListAll returns every record, newest first.
	ListAll(ctx context.Context) ([]models.Transcript, error)
	// DeleteByID reports whether a record with the id existed and was removed.
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	Ping(ctx context.Context) error
}

type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() uuid.UUID
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(o *options) { o.newID = gen }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// timestamp truncates to microseconds so every backend stores the same
// precision Postgres does.
func (o options) timestamp() time.Time {
	return o.now().UTC().Truncate(time.Microsecond)
}

// sortNewestFirst orders by CreatedAt descending. seq holds each record's
// insertion order; later insertions win ties.
func sortNewestFirst(records []models.Transcript, seq []int64) {
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := records[idx[a]], records[idx[b]]
		if !ra.CreatedAt.Equal(rb.CreatedAt) {
			return ra.CreatedAt.After(rb.CreatedAt)
		}
		return seq[idx[a]] > seq[idx[b]]
	})

	sorted := make([]models.Transcript, len(records))
	for i, j := range idx {
		sorted[i] = records[j]
	}
	copy(records, sorted)
}
