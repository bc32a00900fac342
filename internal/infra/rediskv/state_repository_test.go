package rediskv

import (
	"context"
	"testing"
	"time"

	"bin_collection_notifier/internal/domain/notification"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *StateRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStateRepository(client)
}

func TestStateRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Should report not found for an unknown address key", func(t *testing.T) {
		repo := newTestRepo(t)
		_, err := repo.Get(ctx, "deadbeef")
		assert.ErrorIs(t, err, notification.ErrStateNotFound)
	})

	t.Run("Should round-trip a full state record", func(t *testing.T) {
		repo := newTestRepo(t)
		in := &notification.State{
			AddressKey:   "deadbeef",
			LastNotified: time.Date(2025, time.September, 11, 0, 0, 0, 0, time.UTC),
			Snapshot:     "2025-09-11: General Waste\n",
		}
		require.NoError(t, repo.Put(ctx, in))

		out, err := repo.Get(ctx, "deadbeef")
		require.NoError(t, err)
		assert.Equal(t, "deadbeef", out.AddressKey)
		assert.Equal(t, "2025-09-11", out.LastNotified.Format("2006-01-02"))
		assert.Equal(t, in.Snapshot, out.Snapshot)
	})

	t.Run("Should keep a zero last-notified date zero", func(t *testing.T) {
		repo := newTestRepo(t)
		require.NoError(t, repo.Put(ctx, &notification.State{AddressKey: "fresh"}))

		out, err := repo.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.True(t, out.LastNotified.IsZero())
	})

	t.Run("Should overwrite on repeated writes for the same key", func(t *testing.T) {
		repo := newTestRepo(t)
		key := "cafe"
		require.NoError(t, repo.Put(ctx, &notification.State{
			AddressKey:   key,
			LastNotified: time.Date(2025, time.September, 4, 0, 0, 0, 0, time.UTC),
		}))
		require.NoError(t, repo.Put(ctx, &notification.State{
			AddressKey:   key,
			LastNotified: time.Date(2025, time.September, 11, 0, 0, 0, 0, time.UTC),
		}))

		out, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "2025-09-11", out.LastNotified.Format("2006-01-02"))
	})
}
