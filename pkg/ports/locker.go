package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes turns of one session across processes.
// session.Manager takes it around every read-modify-write of a session.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lock expires after ttl if never released, so a crashed owner cannot
	// stall the session forever.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
