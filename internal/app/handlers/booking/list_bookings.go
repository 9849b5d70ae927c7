package booking

import (
	"context"

	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/queries"
	"campnest/internal/app/uow"
	domainsites "campnest/internal/domain/sites"
)

const (
	guestBookingsKey = "booking.list_by_guest"
	hostBookingsKey  = "booking.list_by_host"
	siteBookingsKey  = "booking.list_by_site"
)

type GuestBookingsQuery struct {
	GuestID string
}

func (q GuestBookingsQuery) Key() string { return guestBookingsKey }

type GuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GuestBookingsHandler) Handle(ctx context.Context, query GuestBookingsQuery) ([]dto.Booking, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	list, err := unit.Booking().ListByGuest(execCtx, query.GuestID)
	if err != nil {
		return nil, err
	}
	return dto.MapBookings(list), nil
}

var _ queries.Handler[GuestBookingsQuery, []dto.Booking] = (*GuestBookingsHandler)(nil)

type HostBookingsQuery struct {
	HostID string
}

func (q HostBookingsQuery) Key() string { return hostBookingsKey }

type HostBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *HostBookingsHandler) Handle(ctx context.Context, query HostBookingsQuery) ([]dto.Booking, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	list, err := unit.Booking().ListByHost(execCtx, domainsites.HostID(query.HostID))
	if err != nil {
		return nil, err
	}
	return dto.MapBookings(list), nil
}

var _ queries.Handler[HostBookingsQuery, []dto.Booking] = (*HostBookingsHandler)(nil)

// SiteBookingsQuery is host-facing: the caller must own the site.
type SiteBookingsQuery struct {
	HostID string
	SiteID string
}

func (q SiteBookingsQuery) Key() string { return siteBookingsKey }

type SiteBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SiteBookingsHandler) Handle(ctx context.Context, query SiteBookingsQuery) ([]dto.Booking, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	site, err := unit.Sites().ByID(execCtx, domainsites.SiteID(query.SiteID))
	if err != nil {
		return nil, err
	}
	if site.Host != domainsites.HostID(query.HostID) {
		return nil, ErrNotBookingHost
	}
	list, err := unit.Booking().ListBySite(execCtx, site.ID)
	if err != nil {
		return nil, err
	}
	return dto.MapBookings(list), nil
}

var _ queries.Handler[SiteBookingsQuery, []dto.Booking] = (*SiteBookingsHandler)(nil)
