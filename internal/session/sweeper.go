package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically deletes expired sessions
type Sweeper struct {
	ctx      context.Context
	cancel   context.CancelFunc
	service  *Service
	logger   *logrus.Entry
	interval time.Duration
	done     chan struct{}
}

// SweeperConfig holds the configuration for the sweeper
type SweeperConfig struct {
	Service     *Service
	Logger      *logrus.Entry
	IntervalSec int
}

// NewSweeper creates a new sweeper
func NewSweeper(cfg *SweeperConfig) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	interval := time.Duration(cfg.IntervalSec) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		ctx:      ctx,
		cancel:   cancel,
		service:  cfg.Service,
		logger:   cfg.Logger.WithField("component", "session-sweeper"),
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins periodic sweeps
func (w *Sweeper) Start() {
	w.logger.Info("Starting session sweeper...")
	ticker := time.NewTicker(w.interval)
	go func() {
		defer close(w.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Sweep()
			case <-w.ctx.Done():
				w.logger.Info("Stopping session sweeper...")
				return
			}
		}
	}()
}

// Stop stops the sweeper and waits for the loop to exit
func (w *Sweeper) Stop() {
	w.cancel()
	<-w.done
}

// Sweep runs one pass
func (w *Sweeper) Sweep() {
	n, err := w.service.DeleteExpired(w.ctx)
	if err != nil {
		w.logger.Errorf("Failed to sweep sessions: %v", err)
		return
	}
	if n > 0 {
		w.logger.WithField("deleted", n).Info("Expired sessions removed")
	}
}
