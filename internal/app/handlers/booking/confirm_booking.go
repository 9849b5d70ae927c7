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
	"campnest/internal/domain/shared/fault"
	domainsites "campnest/internal/domain/sites"
)

const confirmBookingKey = "booking.confirm"

// ErrNotBookingHost is returned when the caller does not own the booked site.
var ErrNotBookingHost = fault.Forbidden("booking_not_host", "only the host can confirm this booking")

type ConfirmBookingCommand struct {
	HostID    string
	BookingID string
	Message   string
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

type ConfirmBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*dto.Booking, error) {
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

	if err := b.Confirm(cmd.Message, time.Now().UTC()); err != nil {
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

	if h.Logger != nil {
		h.Logger.Info("booking confirmed", "booking_id", b.ID, "host_id", cmd.HostID)
	}
	view := dto.MapBooking(b)
	return &view, nil
}

var _ commands.Handler[ConfirmBookingCommand, *dto.Booking] = (*ConfirmBookingHandler)(nil)
