package token

import (
	"context"
	"log/slog"
	"sync"
	"time"

	sl "account_service/internal/lib/logger"
)

// Sweeper periodically removes expired tokens. It is an owned background task
// with explicit Start/Stop; tests drive Service.SweepExpired directly instead
// of waiting on the ticker.
type Sweeper struct {
	log      *slog.Logger
	service  *Service
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(log *slog.Logger, service *Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		log:      log,
		service:  service,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. It returns immediately; the loop runs until
// Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				if err := s.service.SweepExpired(ctx); err != nil {
					s.log.Error("token sweep failed", sl.Err(err))
				}
			}
		}
	}()
}

// Stop terminates the loop and waits for it to exit. Safe to call twice.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
