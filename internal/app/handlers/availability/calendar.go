package availability

import (
	"context"
	"time"

	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/queries"
	"campnest/internal/app/uow"
	"campnest/internal/domain/shared/daterange"
	"campnest/internal/domain/shared/fault"
	domainsites "campnest/internal/domain/sites"
)

const (
	siteCalendarKey     = "availability.calendar"
	unavailableSitesKey = "availability.unavailable_sites"
)

// SiteCalendarQuery returns the blocked dates of one site inside a window.
// Dates without a record are available and are not listed.
type SiteCalendarQuery struct {
	SiteID string
	From   time.Time
	To     time.Time
}

func (q SiteCalendarQuery) Key() string { return siteCalendarKey }

type SiteCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SiteCalendarHandler) Handle(ctx context.Context, query SiteCalendarQuery) (*dto.Calendar, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := daterange.New(query.From, query.To)
	if err != nil {
		return nil, fault.BadRequest("calendar_window", "invalid calendar window").Wrap(err)
	}

	siteID := domainsites.SiteID(query.SiteID)
	if _, err := unit.Sites().ByID(execCtx, siteID); err != nil {
		return nil, err
	}
	records, err := unit.Availability().BlockedInRange(execCtx, siteID, dr)
	if err != nil {
		return nil, err
	}

	view := dto.MapCalendar(query.SiteID, records)
	return &view, nil
}

var _ queries.Handler[SiteCalendarQuery, *dto.Calendar] = (*SiteCalendarHandler)(nil)

// UnavailableSitesQuery serves the search layer: given a window, which sites
// cannot host it. Callers subtract the result from their candidate set.
type UnavailableSitesQuery struct {
	From time.Time
	To   time.Time
}

func (q UnavailableSitesQuery) Key() string { return unavailableSitesKey }

type UnavailableSitesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *UnavailableSitesHandler) Handle(ctx context.Context, query UnavailableSitesQuery) (*dto.UnavailableSites, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := daterange.New(query.From, query.To)
	if err != nil {
		return nil, fault.BadRequest("calendar_window", "invalid calendar window").Wrap(err)
	}

	ids, err := unit.Availability().UnavailableSites(execCtx, dr)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return &dto.UnavailableSites{CheckIn: dr.CheckIn, CheckOut: dr.CheckOut, SiteIDs: out}, nil
}

var _ queries.Handler[UnavailableSitesQuery, *dto.UnavailableSites] = (*UnavailableSitesHandler)(nil)
