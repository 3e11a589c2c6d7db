package transcriptstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/models"
)

// PostgresStore keeps transcripts in the transcripts table created by
// migrations/001_create_transcripts.sql.
type PostgresStore struct {
	db   *pgxpool.Pool
	opts options
}

func NewPostgresStore(db *pgxpool.Pool, opts ...Option) *PostgresStore {
	return &PostgresStore{db: db, opts: buildOptions(opts)}
}

func (s *PostgresStore) Insert(ctx context.Context, text, language string) (*models.Transcript, error) {
	now := s.opts.timestamp()

	var t models.Transcript
	err := s.db.QueryRow(ctx,
		`INSERT INTO transcripts (id, text, language, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id, text, language, created_at, updated_at`,
		s.opts.newID(), text, language, now,
	).Scan(&t.ID, &t.Text, &t.Language, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insert transcript: %w", ErrUnavailable, err)
	}
	utc(&t)
	return &t, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Transcript, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, text, language, created_at, updated_at
		 FROM transcripts ORDER BY created_at DESC, seq DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list transcripts: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	transcripts := make([]models.Transcript, 0)
	for rows.Next() {
		var t models.Transcript
		if err := rows.Scan(&t.ID, &t.Text, &t.Language, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan transcript: %w", ErrUnavailable, err)
		}
		utc(&t)
		transcripts = append(transcripts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transcripts: %w", ErrUnavailable, err)
	}
	return transcripts, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM transcripts WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("%w: delete transcript: %w", ErrUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func utc(t *models.Transcript) {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
}
