package filedb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// lockMode selects between the shared (read) and exclusive (write) lock.
type lockMode int

const (
	modeShared lockMode = iota
	modeExclusive
)

func (m lockMode) String() string {
	if m == modeExclusive {
		return "exclusive"
	}
	return "shared"
}

// acquire takes the in-process lock and then the flock on the lock file.
// Without a LockTimeout both waits block and ctx is ignored; a blocked
// writer then holds off new readers. The returned release func must be
// called exactly once.
func (db *DB) acquire(ctx context.Context, mode lockMode) (func(), error) {
	bounded := db.cfg.LockTimeout > 0
	if bounded {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.cfg.LockTimeout)
		defer cancel()
	}

	unlockMem, err := db.lockMemory(ctx, mode, bounded)
	if err != nil {
		return nil, err
	}

	fl := flock.New(db.cfg.LockFile)
	if err := db.lockFile(ctx, fl, mode, bounded); err != nil {
		unlockMem()
		return nil, err
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			db.logger.Error("filedb: failed to release lock",
				"lock_file", db.cfg.LockFile,
				"mode", mode.String(),
				"error", err,
			)
		}
		unlockMem()
	}, nil
}

// lockMemory orders goroutines of this process. It blocks unless bounded,
// in which case it polls until ctx is done.
func (db *DB) lockMemory(ctx context.Context, mode lockMode, bounded bool) (func(), error) {
	lock, tryLock, unlock := db.mu.RLock, db.mu.TryRLock, db.mu.RUnlock
	if mode == modeExclusive {
		lock, tryLock, unlock = db.mu.Lock, db.mu.TryLock, db.mu.Unlock
	}

	if !bounded {
		lock()
		return unlock, nil
	}

	if err := poll(ctx, db.cfg.RetryDelay, tryLock); err != nil {
		return nil, err
	}
	return unlock, nil
}

func (db *DB) lockFile(ctx context.Context, fl *flock.Flock, mode lockMode, bounded bool) error {
	if !bounded {
		var err error
		if mode == modeExclusive {
			err = fl.Lock()
		} else {
			err = fl.RLock()
		}
		if err != nil {
			return fmt.Errorf("%w: lock %s: %v", ErrUnavailable, db.cfg.LockFile, err)
		}
		return nil
	}

	tryLock := fl.TryRLockContext
	if mode == modeExclusive {
		tryLock = fl.TryLockContext
	}

	locked, err := tryLock(ctx, db.cfg.RetryDelay)
	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)):
		return fmt.Errorf("%w: %s lock on %s", ErrLockBusy, mode, db.cfg.LockFile)
	case err != nil:
		return fmt.Errorf("%w: lock %s: %v", ErrUnavailable, db.cfg.LockFile, err)
	case !locked:
		return fmt.Errorf("%w: %s lock on %s", ErrLockBusy, mode, db.cfg.LockFile)
	}
	return nil
}

// poll retries try every delay until it succeeds or ctx is done.
func poll(ctx context.Context, delay time.Duration, try func() bool) error {
	if try() {
		return nil
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrLockBusy, ctx.Err())
		case <-ticker.C:
			if try() {
				return nil
			}
		}
	}
}
