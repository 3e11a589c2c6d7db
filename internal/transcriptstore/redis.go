package transcriptstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/models"
)

const defaultRedisPrefix = "transcripts"

// RedisStore keeps each transcript as a JSON value and indexes ids in a
// sorted set scored by creation time.
type RedisStore struct {
	client *redis.Client
	prefix string
	opts   options
}

type redisRecord struct {
	Transcript models.Transcript `json:"transcript"`
	Seq        int64             `json:"seq"`
}

func NewRedisStore(client *redis.Client, prefix string, opts ...Option) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, opts: buildOptions(opts)}
}

func (s *RedisStore) recordKey(id uuid.UUID) string {
	return s.prefix + ":" + id.String()
}

func (s *RedisStore) indexKey() string { return s.prefix + ":index" }
func (s *RedisStore) seqKey() string   { return s.prefix + ":seq" }

func (s *RedisStore) Insert(ctx context.Context, text, language string) (*models.Transcript, error) {
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: allocate sequence: %w", ErrUnavailable, err)
	}

	now := s.opts.timestamp()
	rec := redisRecord{
		Transcript: models.Transcript{
			ID:        s.opts.newID(),
			Text:      text,
			Language:  language,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Seq: seq,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, s.recordKey(rec.Transcript.ID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(now.UnixMicro()),
			Member: rec.Transcript.ID.String(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: insert transcript: %w", ErrUnavailable, err)
	}

	return &rec.Transcript, nil
}

func (s *RedisStore) ListAll(ctx context.Context) ([]models.Transcript, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: read index: %w", ErrUnavailable, err)
	}

	transcripts := make([]models.Transcript, 0, len(ids))
	if len(ids) == 0 {
		return transcripts, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + ":" + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: read transcripts: %w", ErrUnavailable, err)
	}

	seq := make([]int64, 0, len(values))
	for _, v := range values {
		// Deleted between ZREVRANGE and MGET.
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rec redisRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("%w: decode transcript: %w", ErrUnavailable, err)
		}
		transcripts = append(transcripts, rec.Transcript)
		seq = append(seq, rec.Seq)
	}

	sortNewestFirst(transcripts, seq)
	return transcripts, nil
}

func (s *RedisStore) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.recordKey(id))
		pipe.ZRem(ctx, s.indexKey(), id.String())
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: delete transcript: %w", ErrUnavailable, err)
	}
	return del.Val() > 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}
