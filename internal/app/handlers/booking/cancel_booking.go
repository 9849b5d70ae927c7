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
	domainavailability "campnest/internal/domain/availability"
	domainbooking "campnest/internal/domain/booking"
	"campnest/internal/domain/shared/fault"
	domainsites "campnest/internal/domain/sites"
)

const cancelBookingKey = "booking.cancel"

// ErrNotBookingParty is returned when the caller is neither the guest nor
// the host of the booking.
var ErrNotBookingParty = fault.Forbidden("booking_not_party", "only the guest or the host can cancel this booking")

type CancelBookingCommand struct {
	ActorID   string
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

// CancelBookingHandler releases the claimed dates and writes the cancelled
// status inside one unit of work, so a crash cannot leave a cancelled
// booking still holding blocked dates. The release filters on the "booked"
// block type: manual host blocks on the same dates survive.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
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

	var actor domainbooking.CancelActor
	switch {
	case b.GuestID == cmd.ActorID:
		actor = domainbooking.CancelledByGuest
	case b.HostID == domainsites.HostID(cmd.ActorID):
		actor = domainbooking.CancelledByHost
	default:
		return nil, ErrNotBookingParty
	}

	if err := b.Cancel(actor, cmd.Reason, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := unit.Availability().ReleaseRange(execCtx, b.SiteID, b.Range, domainavailability.BlockBooked); err != nil {
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
		h.Logger.Info("booking cancelled", "booking_id", b.ID, "actor", actor, "reason", cmd.Reason)
	}
	view := dto.MapBooking(b)
	return &view, nil
}

var _ commands.Handler[CancelBookingCommand, *dto.Booking] = (*CancelBookingHandler)(nil)
