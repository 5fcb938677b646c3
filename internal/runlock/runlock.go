package runlock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const FileName = "jobalert.lock"

var ErrLocked = errors.New("another jobalert run holds the lock")

type Lock struct {
	fl *flock.Flock
}

// Acquire takes the run lock in dataDir, waiting up to wait for a concurrent
// run to finish. wait <= 0 means a single attempt.
func Acquire(ctx context.Context, dataDir string, wait time.Duration) (*Lock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	fl := flock.New(filepath.Join(dataDir, FileName))

	var (
		ok  bool
		err error
	)
	if wait <= 0 {
		ok, err = fl.TryLock()
	} else {
		wctx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		ok, err = fl.TryLockContext(wctx, 100*time.Millisecond)
		if err != nil && wctx.Err() != nil && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, fl.Path())
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Path() string { return l.fl.Path() }

// Release is safe on a nil lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	return l.fl.Unlock()
}
