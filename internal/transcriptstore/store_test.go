package transcriptstore

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/database"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/models"
)

// stepClock advances by step on every reading.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{t: time.Date(2025, 5, 16, 12, 0, 0, 0, time.UTC), step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

type storeFactory func(t *testing.T, opts ...Option) Store

func backends(t *testing.T) map[string]storeFactory {
	t.Helper()

	factories := map[string]storeFactory{
		"memory": func(t *testing.T, opts ...Option) Store {
			return NewMemoryStore(opts...)
		},
		"redis": func(t *testing.T, opts ...Option) Store {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { client.Close() })
			return NewRedisStore(client, "test-transcripts", opts...)
		},
	}

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		factories["postgres"] = func(t *testing.T, opts ...Option) Store {
			ctx := context.Background()
			pool, err := pgxpool.New(ctx, url)
			require.NoError(t, err)
			t.Cleanup(pool.Close)

			require.NoError(t, database.RunMigrations(ctx, pool, "../../migrations"))
			_, err = pool.Exec(ctx, "TRUNCATE transcripts")
			require.NoError(t, err)
			return NewPostgresStore(pool, opts...)
		}
	}

	return factories
}

func texts(records []models.Transcript) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text
	}
	return out
}

func TestStore_InsertAssignsIdentity(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newStepClock(time.Second)
			store := newStore(t, WithClock(clock.Now))
			ctx := context.Background()

			a, err := store.Insert(ctx, "hello world", "en-US")
			require.NoError(t, err)
			b, err := store.Insert(ctx, "hello again", "fr-FR")
			require.NoError(t, err)

			assert.NotEqual(t, uuid.Nil, a.ID)
			assert.NotEqual(t, a.ID, b.ID)
			assert.Equal(t, "hello world", a.Text)
			assert.Equal(t, "en-US", a.Language)
			assert.Equal(t, "fr-FR", b.Language)
			assert.False(t, a.CreatedAt.IsZero())
			assert.True(t, a.CreatedAt.Equal(a.UpdatedAt))
			assert.True(t, b.CreatedAt.After(a.CreatedAt))
		})
	}
}

func TestStore_ListAllNewestFirst(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newStepClock(time.Second)
			store := newStore(t, WithClock(clock.Now))
			ctx := context.Background()

			empty, err := store.ListAll(ctx)
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)

			for _, text := range []string{"a", "b", "c"} {
				_, err := store.Insert(ctx, text, "en-US")
				require.NoError(t, err)
			}

			list, err := store.ListAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "b", "a"}, texts(list))
		})
	}
}

func TestStore_ListAllTiesFavourLatestInsert(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newStepClock(0)
			store := newStore(t, WithClock(clock.Now))
			ctx := context.Background()

			for _, text := range []string{"first", "second", "third"} {
				_, err := store.Insert(ctx, text, "en-US")
				require.NoError(t, err)
			}

			list, err := store.ListAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"third", "second", "first"}, texts(list))
		})
	}
}

func TestStore_DeleteByID(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newStepClock(time.Second)
			store := newStore(t, WithClock(clock.Now))
			ctx := context.Background()

			ids := map[string]uuid.UUID{}
			for _, text := range []string{"a", "b", "c"} {
				rec, err := store.Insert(ctx, text, "en-US")
				require.NoError(t, err)
				ids[text] = rec.ID
			}

			removed, err := store.DeleteByID(ctx, ids["b"])
			require.NoError(t, err)
			assert.True(t, removed)

			list, err := store.ListAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "a"}, texts(list))

			removed, err = store.DeleteByID(ctx, ids["b"])
			require.NoError(t, err)
			assert.False(t, removed)

			removed, err = store.DeleteByID(ctx, uuid.New())
			require.NoError(t, err)
			assert.False(t, removed)

			list, err = store.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 2)
		})
	}
}

func TestStore_Ping(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, newStore(t).Ping(context.Background()))
		})
	}
}

func TestMemoryStore_NeverReusesIdentifiers(t *testing.T) {
	fixed := uuid.MustParse("6f1c1f4e-8a0b-4c1e-9d7e-2f5b9d3a1c00")
	store := NewMemoryStore(WithIDGenerator(func() uuid.UUID { return fixed }))
	ctx := context.Background()

	first, err := store.Insert(ctx, "one", "en-US")
	require.NoError(t, err)
	removed, err := store.DeleteByID(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, removed)

	second, err := store.Insert(ctx, "two", "en-US")
	require.NoError(t, err)
	assert.Equal(t, fixed, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestMemoryStore_ConcurrentInserts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Insert(ctx, "concurrent", "en-US")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestRedisStore_UnavailableWrapsSentinel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	store := NewRedisStore(client, "")
	mr.Close()

	ctx := context.Background()

	_, err := store.Insert(ctx, "lost", "en-US")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = store.ListAll(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = store.DeleteByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, store.Ping(ctx), ErrUnavailable)
}

func TestRedisStore_KeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewRedisStore(client, "")

	rec, err := store.Insert(context.Background(), "layout", "en-US")
	require.NoError(t, err)

	assert.True(t, mr.Exists("transcripts:"+rec.ID.String()))
	members, err := mr.ZMembers("transcripts:index")
	require.NoError(t, err)
	assert.Equal(t, []string{rec.ID.String()}, members)
}
