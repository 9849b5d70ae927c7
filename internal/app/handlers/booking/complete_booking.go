package booking

import (
	"context"
	"log/slog"
	"time"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/outbox"
	"campnest/internal/app/uow"
	domainbooking "campnest/internal/domain/booking"
	domainsites "campnest/internal/domain/sites"
)

const (
	completeBookingKey     = "booking.complete"
	completeDueBookingsKey = "booking.complete_due"

	completionBatchSize = 100
)

type CompleteBookingCommand struct {
	HostID    string
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

// CompleteBookingHandler lets a host close out a finished stay manually,
// ahead of the sweeper.
type CompleteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (*dto.Booking, error) {
	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	b, err := unit.Booking().ByID(execCtx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if b.HostID != domainsites.HostID(cmd.HostID) {
		return nil, ErrNotBookingHost
	}
	if err := b.Complete(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := unit.Booking().Save(execCtx, b); err != nil {
		return nil, err
	}
	if err := outbox.Drain(execCtx, h.Outbox, nil, &b.EventRecorder); err != nil {
		return nil, err
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}

	view := dto.MapBooking(b)
	return &view, nil
}

var _ commands.Handler[CompleteBookingCommand, *dto.Booking] = (*CompleteBookingHandler)(nil)

// CompleteDueBookingsCommand is fired by the scheduler. It sweeps confirmed
// bookings whose check-out has passed and marks them completed.
type CompleteDueBookingsCommand struct {
	Now time.Time
}

func (c CompleteDueBookingsCommand) Key() string { return completeDueBookingsKey }

type CompleteDueBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *CompleteDueBookingsHandler) Handle(ctx context.Context, cmd CompleteDueBookingsCommand) (int, error) {
	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return 0, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	due, err := unit.Booking().ListDueForCompletion(execCtx, now, completionBatchSize)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, b := range due {
		if err := b.Complete(now); err != nil {
			// Another writer got there first; skip, don't abort the sweep.
			if h.Logger != nil {
				h.Logger.Warn("skipping booking in sweep", "booking_id", b.ID, "error", err)
			}
			continue
		}
		if err := unit.Booking().Save(execCtx, b); err != nil {
			return completed, err
		}
		if err := outbox.Drain(execCtx, h.Outbox, nil, &b.EventRecorder); err != nil {
			return completed, err
		}
		completed++
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return completed, err
		}
	}

	if h.Logger != nil && completed > 0 {
		h.Logger.Info("completed due bookings", "count", completed)
	}
	return completed, nil
}

var _ commands.Handler[CompleteDueBookingsCommand, int] = (*CompleteDueBookingsHandler)(nil)
