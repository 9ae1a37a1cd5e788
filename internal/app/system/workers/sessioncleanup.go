// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExpiredPurger is a session store that must be swept by hand. Mongo and
// Redis expire records on their own and do not implement it.
type ExpiredPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionCleanup is a background worker that removes expired session records.
type SessionCleanup struct {
	sessions ExpiredPurger
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewSessionCleanup creates a worker that sweeps store every interval
// (default 10 minutes).
func NewSessionCleanup(store ExpiredPurger, logger *zap.Logger, interval time.Duration) *SessionCleanup {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SessionCleanup{
		sessions: store,
		log:      logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop. Calling it twice is a no-op.
func (w *SessionCleanup) Start() {
	w.startOnce.Do(func() {
		w.started = true
		w.wg.Add(1)
		go w.run()
		w.log.Info("session cleanup worker started", zap.Duration("interval", w.interval))
	})
}

// Stop signals the worker to stop and waits for it to finish. It is safe on
// a nil or never-started worker.
func (w *SessionCleanup) Stop() {
	if w == nil {
		return
	}
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		if w.started {
			w.log.Info("session cleanup worker stopped")
		}
	})
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs one cleanup pass and returns how many records were removed.
func (w *SessionCleanup) Sweep() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.sessions.DeleteExpired(ctx, w.now())
	if err != nil {
		w.log.Error("failed to delete expired sessions", zap.Error(err))
		return 0
	}
	if count > 0 {
		w.log.Info("deleted expired sessions", zap.Int64("count", count))
	}
	return count
}
