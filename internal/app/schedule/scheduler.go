package schedule

import (
	"context"
	"log/slog"
	"time"

	"campnest/internal/app/commands"
	bookinghandlers "campnest/internal/app/handlers/booking"
)

// Scheduler enqueues a named job for later execution.
type Scheduler interface {
	Schedule(ctx context.Context, name string, payload any, runAt time.Time) error
}

// CompletionSweeper periodically marks confirmed bookings with a past
// check-out as completed. It runs in-process off a ticker; a skipped tick
// only delays completion until the next one.
type CompletionSweeper struct {
	Bus      commands.Bus
	Interval time.Duration
	Logger   *slog.Logger
}

func (s *CompletionSweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *CompletionSweeper) sweep(ctx context.Context) {
	count, err := commands.Dispatch[bookinghandlers.CompleteDueBookingsCommand, int](
		ctx, s.Bus, bookinghandlers.CompleteDueBookingsCommand{Now: time.Now()},
	)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("completion sweep failed", "error", err)
		}
		return
	}
	if s.Logger != nil && count > 0 {
		s.Logger.Info("completion sweep finished", "completed", count)
	}
}
