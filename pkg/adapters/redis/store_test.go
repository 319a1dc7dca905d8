package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/colloquy/pkg/adapters/redis"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunStateStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_PrefixAndLiveActionDropped(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	state := domain.NewExecutionState("s1")
	state.Metadata.ActionState = &domain.ActionStateSnapshot{ActionID: "a1", ActionType: "ai_ask", CurrentRound: 1, MaxRounds: 3}
	require.NoError(t, store.Save(ctx, "s1", state))

	assert.True(t, mr.Exists("test:s:s1"))
	assert.True(t, mr.Exists("test:idx"))
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded.CurrentAction)
	assert.Equal(t, 1, loaded.Metadata.ActionState.CurrentRound)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "session-ttl", domain.NewExecutionState("session-ttl")))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, "session-ttl")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "session-ttl")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_SessionIDsDoNotCollideWithIndex(t *testing.T) {
	_, client := setup(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	for _, id := range []string{"index", "idx", "s:x", "b"} {
		require.NoError(t, store.Save(ctx, id, domain.NewExecutionState(id)))
	}

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"index", "idx", "s:x", "b"}, sessions)

	loaded, err := store.Load(ctx, "idx")
	require.NoError(t, err)
	assert.Equal(t, "idx", loaded.SessionID)

	require.NoError(t, store.Delete(ctx, "idx"))
	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"index", "s:x", "b"}, sessions)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client)
	mr.Close()

	_, err := store.Load(context.Background(), "s1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
