package jobs

import (
	"context"
	"log"
	"time"

	"ring-predictions/internal/services"

	"github.com/jonboulle/clockwork"
)

// DeadlineSweeper periodically locks submitted predictions whose deadline
// has passed. The transition is clock-driven, not user-driven.
type DeadlineSweeper struct {
	predictions *services.PredictionService
	interval    time.Duration
	clock       clockwork.Clock
	stopChan    chan struct{}
}

// NewDeadlineSweeper creates a new deadline sweep job
func NewDeadlineSweeper(
	predictions *services.PredictionService,
	interval time.Duration,
	clock clockwork.Clock,
) *DeadlineSweeper {
	return &DeadlineSweeper{
		predictions: predictions,
		interval:    interval,
		clock:       clock,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the sweep loop
func (s *DeadlineSweeper) Start() {
	log.Printf("[DeadlineSweeper] Starting deadline sweep job (interval: %v)", s.interval)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.sweep()
		case <-s.stopChan:
			log.Println("[DeadlineSweeper] Stopping deadline sweep job")
			return
		}
	}
}

// Stop stops the sweep loop
func (s *DeadlineSweeper) Stop() {
	close(s.stopChan)
}

// sweep locks every submitted prediction past its deadline
func (s *DeadlineSweeper) sweep() {
	ctx := context.Background()

	locked, err := s.predictions.LockDuePredictions(ctx)
	if err != nil {
		log.Printf("[DeadlineSweeper] Error locking due predictions: %v", err)
		return
	}

	if locked > 0 {
		log.Printf("[DeadlineSweeper] Locked %d predictions", locked)
	}
}
