// internal/app/system/workers/editsessioncleanup.go
package workers

import (
	"sync"
	"time"

	"github.com/dalemusser/quickclass/internal/app/system/editsessions"
	"go.uber.org/zap"
)

// EditSessionCleanup is a background worker that evicts idle class list
// editing sessions.
type EditSessionCleanup struct {
	registry *editsessions.Registry
	log      *zap.Logger
	interval time.Duration
	maxIdle  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewEditSessionCleanup creates a new cleanup worker.
//
// Parameters:
//   - registry: the edit session registry
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 minute)
//   - maxIdle: how long a session may go unused before it is closed (e.g., 30 minutes)
func NewEditSessionCleanup(registry *editsessions.Registry, logger *zap.Logger, interval, maxIdle time.Duration) *EditSessionCleanup {
	return &EditSessionCleanup{
		registry: registry,
		log:      logger,
		interval: interval,
		maxIdle:  maxIdle,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *EditSessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("edit session cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("max_idle", w.maxIdle))
}

// Stop signals the worker to stop and waits for it to finish.
// It is safe to call more than once.
func (w *EditSessionCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("edit session cleanup worker stopped")
}

func (w *EditSessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *EditSessionCleanup) cleanup() {
	if n := w.registry.EvictIdle(w.maxIdle); n > 0 {
		w.log.Info("evicted idle edit sessions",
			zap.Int("count", n),
			zap.Int("remaining", w.registry.Len()))
	}
}
