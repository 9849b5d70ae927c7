package booking

import (
	"context"

	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/queries"
	"campnest/internal/app/uow"
	domainbooking "campnest/internal/domain/booking"
	"campnest/internal/domain/shared/fault"
	domainsites "campnest/internal/domain/sites"
)

const getBookingKey = "booking.get"

// ErrNotBookingViewer is returned when someone outside the booking asks for
// its details.
var ErrNotBookingViewer = fault.Forbidden("booking_not_viewer", "only the guest or the host can view this booking")

type GetBookingQuery struct {
	ActorID   string
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, query GetBookingQuery) (*dto.Booking, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	b, err := unit.Booking().ByID(execCtx, domainbooking.BookingID(query.BookingID))
	if err != nil {
		return nil, err
	}
	if b.GuestID != query.ActorID && b.HostID != domainsites.HostID(query.ActorID) {
		return nil, ErrNotBookingViewer
	}

	view := dto.MapBooking(b)
	return &view, nil
}

var _ queries.Handler[GetBookingQuery, *dto.Booking] = (*GetBookingHandler)(nil)
