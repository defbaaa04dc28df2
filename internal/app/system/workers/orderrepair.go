// internal/app/system/workers/orderrepair.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/kanban/internal/app/kanban"
	"github.com/dalemusser/kanban/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Repairer renumbers containers whose orders drifted.
type Repairer interface {
	RepairDrift(ctx context.Context, limit int64) (kanban.RepairResult, error)
}

// OrderRepair is a background worker that re-densifies column and card
// orders left with gaps or duplicates by an interrupted cascade or a bad
// bulk reorder payload.
type OrderRepair struct {
	repairer Repairer
	log      *zap.Logger
	interval time.Duration
	batch    int64
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewOrderRepair creates a new order repair worker.
//
// Parameters:
//   - repairer: usually the kanban service
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 5 minutes)
//   - batch: most containers of each kind fixed per sweep (0 = no limit)
func NewOrderRepair(repairer Repairer, logger *zap.Logger, interval time.Duration, batch int64) *OrderRepair {
	return &OrderRepair{
		repairer: repairer,
		log:      logger,
		interval: interval,
		batch:    batch,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *OrderRepair) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("order repair worker started",
		zap.Duration("interval", w.interval),
		zap.Int64("batch", w.batch))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call twice.
func (w *OrderRepair) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("order repair worker stopped")
	})
}

func (w *OrderRepair) run() {
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

// Sweep runs one repair pass.
func (w *OrderRepair) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	res, err := w.repairer.RepairDrift(ctx, w.batch)
	if err != nil {
		w.log.Error("order repair sweep failed", zap.Error(err))
		return
	}

	if res.Boards > 0 || res.Columns > 0 {
		w.log.Info("order repair sweep fixed drift",
			zap.Int("boards", res.Boards),
			zap.Int("columns", res.Columns))
	}
}
