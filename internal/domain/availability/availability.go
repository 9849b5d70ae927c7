package availability

import (
	"context"
	"time"

	"campnest/internal/domain/shared/daterange"
	"campnest/internal/domain/shared/fault"
	"campnest/internal/domain/sites"
)

// BlockType tags why a date is blocked. Guest bookings and manual host
// blocks must stay distinguishable so releasing one never clears the other.
type BlockType string

const (
	BlockBooked      BlockType = "booked"
	BlockHostBlocked BlockType = "host-blocked"
)

// ErrRangeConflict is returned by ClaimRange when any date in the requested
// range is already blocked. Claiming is the exclusivity check: the first
// writer wins, racing writers get this error.
var ErrRangeConflict = fault.Conflict("range_unavailable", "requested dates are not available")

// Record is one per-site, per-date availability row. Absence of a record
// means the date is open.
type Record struct {
	SiteID    sites.SiteID
	Date      time.Time
	Available bool
	BlockType BlockType
	Reason    string
}

// Repository is the single owner of the calendar. All claim/release/check
// traffic goes through it; no other component writes calendar rows.
type Repository interface {
	// IsRangeFree reports whether no date in [CheckIn, CheckOut) is blocked.
	IsRangeFree(ctx context.Context, siteID sites.SiteID, dr daterange.DateRange) (bool, error)

	// ClaimRange atomically blocks every date in the range with the given
	// block type. It fails with ErrRangeConflict if any date is already
	// blocked, claiming nothing. Re-claiming dates already held with the
	// same block type and reason upserts instead of duplicating.
	ClaimRange(ctx context.Context, siteID sites.SiteID, dr daterange.DateRange, blockType BlockType, reason string) error

	// ReleaseRange deletes records in the range whose block type matches the
	// filter. A guest cancellation releases only "booked" rows, leaving
	// host-imposed blocks untouched.
	ReleaseRange(ctx context.Context, siteID sites.SiteID, dr daterange.DateRange, filter BlockType) error

	// BlockedInRange returns the blocked records inside the range, ordered
	// by date.
	BlockedInRange(ctx context.Context, siteID sites.SiteID, dr daterange.DateRange) ([]Record, error)

	// UnavailableSites returns the IDs of sites with at least one blocked
	// date inside the range. Read-only consumer for the search layer.
	UnavailableSites(ctx context.Context, dr daterange.DateRange) ([]sites.SiteID, error)
}
