// Package jobs runs the periodic background work the API needs: reaping
// expired verification and reset codes. Expiry is already enforced at
// read time; the sweeper only keeps the table from growing.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alora-app/alora/internal/domain/resettoken"
	"github.com/alora-app/alora/internal/pkg/logger"
)

// Sweeper periodically deletes expired tokens.
type Sweeper struct {
	cron   *cron.Cron
	tokens resettoken.Repository
	logger *logger.Logger
}

// NewSweeper creates a sweeper running hourly.
func NewSweeper(tokens resettoken.Repository, log *logger.Logger) *Sweeper {
	return &Sweeper{
		cron:   cron.New(),
		tokens: tokens,
		logger: log,
	}
}

// Start schedules the sweep and starts the cron scheduler.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc("@hourly", s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to delete expired tokens")
		return
	}
	if n > 0 {
		s.logger.Infof("Deleted %d expired tokens", n)
	}
}
