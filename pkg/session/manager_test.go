package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Load(ctx context.Context, sessionID string) (*domain.ExecutionState, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, sessionID)
}

func TestManager_UpdateSerializesWriters(t *testing.T) {
	mgr := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	writers := 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := mgr.Update(ctx, id, func(_ context.Context, prev *domain.ExecutionState) (*domain.ExecutionState, error) {
				if prev == nil {
					prev = domain.NewExecutionState(id)
				}
				prev.ConversationHistory = append(prev.ConversationHistory, domain.Message{Role: domain.RoleUser, Content: "x"})
				return prev, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, state.ConversationHistory, writers, "no update may be lost")
}

func TestManager_UpdateFailureSavesNothing(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	boom := errors.New("boom")

	prev, next, err := mgr.Update(ctx, "s1", func(context.Context, *domain.ExecutionState) (*domain.ExecutionState, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, prev)
	assert.Nil(t, next)

	_, err = mgr.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_LoadOrStart(t *testing.T) {
	mgr := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := mgr.LoadOrStart(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, state)
		}()
	}
	wg.Wait()

	state, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, state.SessionID)
	assert.Equal(t, domain.StatusRunning, state.Status)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}

type recordingLocker struct {
	mu       sync.Mutex
	keys     []string
	ttl      time.Duration
	unlocked int
	fail     error
}

func (l *recordingLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	l.ttl = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocked++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))

	require.NoError(t, mgr.Save(context.Background(), "s1", domain.NewExecutionState("s1")))
	assert.Equal(t, []string{"s1"}, locker.keys)
	assert.Equal(t, 5*time.Second, locker.ttl)
	assert.Equal(t, 1, locker.unlocked)

	locker.fail = errors.New("busy")
	err := mgr.Delete(context.Background(), "s1")
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}
