package booking

import (
	"context"

	"campnest/internal/app/uow"
	domainrange "campnest/internal/domain/shared/daterange"
	domainsites "campnest/internal/domain/sites"
)

// ConflictDetector answers whether a date range is bookable. The calendar
// check is the primary enforcement surface; the booking-overlap scan is
// defense in depth against any path that wrote a booking without claiming
// its dates. Both checks use the half-open interval test, so back-to-back
// stays where one check-out equals the other check-in never conflict.
type ConflictDetector struct{}

func (ConflictDetector) HasConflict(ctx context.Context, unit uow.UnitOfWork, siteID domainsites.SiteID, dr domainrange.DateRange) (bool, error) {
	free, err := unit.Availability().IsRangeFree(ctx, siteID, dr)
	if err != nil {
		return false, err
	}
	if !free {
		return true, nil
	}
	overlapping, err := unit.Booking().ListActiveOverlapping(ctx, siteID, dr)
	if err != nil {
		return false, err
	}
	return len(overlapping) > 0, nil
}
