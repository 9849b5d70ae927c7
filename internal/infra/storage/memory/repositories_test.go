package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "campnest/internal/domain/availability"
	domainbooking "campnest/internal/domain/booking"
	"campnest/internal/domain/pricing"
	domainrange "campnest/internal/domain/shared/daterange"
	domainsites "campnest/internal/domain/sites"
)

func mustRange(t *testing.T, inDay, outDay int) domainrange.DateRange {
	t.Helper()
	r, err := domainrange.New(
		time.Date(2026, time.July, inDay, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, outDay, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return r
}

func TestAvailabilityClaimAndRelease(t *testing.T) {
	ctx := context.Background()
	repo := NewAvailabilityRepository()
	site := domainsites.SiteID("site-1")

	free, err := repo.IsRangeFree(ctx, site, mustRange(t, 10, 12))
	require.NoError(t, err)
	assert.True(t, free)

	require.NoError(t, repo.ClaimRange(ctx, site, mustRange(t, 10, 12), domainavailability.BlockBooked, "CN-TEST1234"))

	free, err = repo.IsRangeFree(ctx, site, mustRange(t, 10, 12))
	require.NoError(t, err)
	assert.False(t, free)

	// Back-to-back stay starting on the check-out date is free.
	free, err = repo.IsRangeFree(ctx, site, mustRange(t, 12, 14))
	require.NoError(t, err)
	assert.True(t, free)

	require.NoError(t, repo.ReleaseRange(ctx, site, mustRange(t, 10, 12), domainavailability.BlockBooked))
	free, err = repo.IsRangeFree(ctx, site, mustRange(t, 10, 12))
	require.NoError(t, err)
	assert.True(t, free)
}

func TestAvailabilityClaimConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewAvailabilityRepository()
	site := domainsites.SiteID("site-1")

	require.NoError(t, repo.ClaimRange(ctx, site, mustRange(t, 10, 12), domainavailability.BlockBooked, "CN-AAAA1111"))

	// Overlapping claim with a different reason loses.
	err := repo.ClaimRange(ctx, site, mustRange(t, 11, 13), domainavailability.BlockBooked, "CN-BBBB2222")
	assert.ErrorIs(t, err, domainavailability.ErrRangeConflict)

	// The loser claimed nothing: the 12th stays free.
	free, err := repo.IsRangeFree(ctx, site, mustRange(t, 12, 13))
	require.NoError(t, err)
	assert.True(t, free)

	// Re-claiming the same range with the same reason is idempotent.
	assert.NoError(t, repo.ClaimRange(ctx, site, mustRange(t, 10, 12), domainavailability.BlockBooked, "CN-AAAA1111"))

	// Other sites are unaffected.
	assert.NoError(t, repo.ClaimRange(ctx, "site-2", mustRange(t, 10, 12), domainavailability.BlockBooked, "CN-BBBB2222"))
}

func TestAvailabilityReleaseFiltersBlockType(t *testing.T) {
	ctx := context.Background()
	repo := NewAvailabilityRepository()
	site := domainsites.SiteID("site-1")

	require.NoError(t, repo.ClaimRange(ctx, site, mustRange(t, 10, 12), domainavailability.BlockBooked, "CN-AAAA1111"))
	require.NoError(t, repo.ClaimRange(ctx, site, mustRange(t, 12, 14), domainavailability.BlockHostBlocked, "maintenance"))

	// Releasing booked rows leaves the host block in place.
	require.NoError(t, repo.ReleaseRange(ctx, site, mustRange(t, 10, 14), domainavailability.BlockBooked))

	blocked, err := repo.BlockedInRange(ctx, site, mustRange(t, 10, 14))
	require.NoError(t, err)
	require.Len(t, blocked, 2)
	for _, rec := range blocked {
		assert.Equal(t, domainavailability.BlockHostBlocked, rec.BlockType)
	}
}

func TestAvailabilityConcurrentClaimSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewAvailabilityRepository()
	site := domainsites.SiteID("site-1")
	dr := mustRange(t, 10, 12)

	const racers = 32
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.ClaimRange(ctx, site, dr, domainavailability.BlockBooked, "CN-RACER"+string(rune('A'+i)))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domainavailability.ErrRangeConflict)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestAvailabilityUnavailableSites(t *testing.T) {
	ctx := context.Background()
	repo := NewAvailabilityRepository()

	require.NoError(t, repo.ClaimRange(ctx, "site-b", mustRange(t, 10, 12), domainavailability.BlockBooked, "CN-AAAA1111"))
	require.NoError(t, repo.ClaimRange(ctx, "site-a", mustRange(t, 11, 13), domainavailability.BlockHostBlocked, "maintenance"))
	require.NoError(t, repo.ClaimRange(ctx, "site-c", mustRange(t, 20, 22), domainavailability.BlockBooked, "CN-BBBB2222"))

	ids, err := repo.UnavailableSites(ctx, mustRange(t, 10, 14))
	require.NoError(t, err)
	assert.Equal(t, []domainsites.SiteID{"site-a", "site-b"}, ids)
}

func testBooking(t *testing.T, id string, site domainsites.SiteID, dr domainrange.DateRange) *domainbooking.Booking {
	t.Helper()
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:   domainbooking.BookingID(id),
		Code: domainbooking.NewCode(),
		Site: &domainsites.Site{
			ID:         site,
			PropertyID: "prop-1",
			Host:       "host-1",
			Name:       "pitch",
			Capacity:   domainsites.Capacity{MaxGuests: 4},
			Tariff:     domainsites.Tariff{Currency: "EUR", BasePrice: 100},
			State:      domainsites.SiteActive,
		},
		GuestID:   "guest-1",
		Range:     dr,
		Occupancy: domainbooking.Occupancy{Guests: 2},
		Price:     pricing.Breakdown{Currency: "EUR", Nights: dr.Nights(), Total: 100},
		Schedule:  domainbooking.DefaultSchedule(),
		Now:       time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestBookingRepositoryLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()

	b := testBooking(t, "bk-1", "site-1", mustRange(t, 10, 12))
	require.NoError(t, repo.Save(ctx, b))

	got, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, b.Code, got.Code)

	byCode, err := repo.ByCode(ctx, b.Code)
	require.NoError(t, err)
	assert.Equal(t, b.ID, byCode.ID)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)

	_, err = repo.ByCode(ctx, "CN-MISSINGX")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestBookingRepositoryActiveOverlapping(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	active := testBooking(t, "bk-1", "site-1", mustRange(t, 10, 12))
	require.NoError(t, repo.Save(ctx, active))

	cancelled := testBooking(t, "bk-2", "site-1", mustRange(t, 10, 12))
	require.NoError(t, cancelled.Cancel(domainbooking.CancelledByGuest, "", now))
	require.NoError(t, repo.Save(ctx, cancelled))

	otherSite := testBooking(t, "bk-3", "site-2", mustRange(t, 10, 12))
	require.NoError(t, repo.Save(ctx, otherSite))

	backToBack := testBooking(t, "bk-4", "site-1", mustRange(t, 12, 14))
	require.NoError(t, repo.Save(ctx, backToBack))

	overlapping, err := repo.ListActiveOverlapping(ctx, "site-1", mustRange(t, 11, 13))
	require.NoError(t, err)
	require.Len(t, overlapping, 2)
	ids := map[domainbooking.BookingID]struct{}{overlapping[0].ID: {}, overlapping[1].ID: {}}
	assert.Contains(t, ids, domainbooking.BookingID("bk-1"))
	assert.Contains(t, ids, domainbooking.BookingID("bk-4"))
}

func TestBookingRepositoryDueForCompletion(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	confirmAt := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	early := testBooking(t, "bk-1", "site-1", mustRange(t, 10, 12))
	require.NoError(t, early.Confirm("", confirmAt))
	require.NoError(t, repo.Save(ctx, early))

	late := testBooking(t, "bk-2", "site-1", mustRange(t, 20, 22))
	require.NoError(t, late.Confirm("", confirmAt))
	require.NoError(t, repo.Save(ctx, late))

	pending := testBooking(t, "bk-3", "site-1", mustRange(t, 10, 11))
	require.NoError(t, repo.Save(ctx, pending))

	due, err := repo.ListDueForCompletion(ctx, time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, domainbooking.BookingID("bk-1"), due[0].ID)

	all, err := repo.ListDueForCompletion(ctx, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Sorted by check-out, earliest first.
	assert.Equal(t, domainbooking.BookingID("bk-1"), all[0].ID)

	limited, err := repo.ListDueForCompletion(ctx, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
