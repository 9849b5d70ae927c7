package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "campnest/internal/domain/availability"
	"campnest/internal/domain/shared/daterange"
	domainsites "campnest/internal/domain/sites"
	"campnest/internal/infra/storage/memory"
)

func newCalendarFixture(t *testing.T) (memory.Factory, *memory.AvailabilityRepository) {
	t.Helper()
	availability := memory.NewAvailabilityRepository()
	factory := memory.Factory{
		PropertiesRepo:   memory.NewPropertyRepository(),
		SitesRepo:        memory.NewSiteRepository(),
		AvailabilityRepo: availability,
		BookingRepo:      memory.NewBookingRepository(),
		ReviewsRepo:      memory.NewReviewRepository(),
	}

	site, err := domainsites.NewSite(domainsites.CreateSiteParams{
		ID:         "site-1",
		PropertyID: "prop-1",
		Host:       "host-1",
		Name:       "Meadow pitch",
		Capacity:   domainsites.Capacity{MaxGuests: 4},
		Tariff:     domainsites.Tariff{Currency: "EUR", BasePrice: 80},
		Now:        time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, factory.SitesRepo.Save(context.Background(), site))
	return factory, availability
}

func window(t *testing.T, daysAhead, length int) (time.Time, time.Time) {
	t.Helper()
	from := daterange.Truncate(time.Now().UTC()).AddDate(0, 0, daysAhead)
	return from, from.AddDate(0, 0, length)
}

func TestBlockDates(t *testing.T) {
	factory, availability := newCalendarFixture(t)
	h := &BlockDatesHandler{UoWFactory: factory}

	from, to := window(t, 10, 3)
	_, err := h.Handle(context.Background(), BlockDatesCommand{
		HostID: "host-1",
		SiteID: "site-1",
		From:   from,
		To:     to,
		Reason: "maintenance",
	})
	require.NoError(t, err)

	dr, err := daterange.New(from, to)
	require.NoError(t, err)
	records, err := availability.BlockedInRange(context.Background(), "site-1", dr)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.Equal(t, domainavailability.BlockHostBlocked, rec.BlockType)
		assert.Equal(t, "maintenance", rec.Reason)
	}
}

func TestBlockDatesRequiresSiteHost(t *testing.T) {
	factory, _ := newCalendarFixture(t)
	h := &BlockDatesHandler{UoWFactory: factory}

	from, to := window(t, 10, 2)
	_, err := h.Handle(context.Background(), BlockDatesCommand{
		HostID: "imposter",
		SiteID: "site-1",
		From:   from,
		To:     to,
	})
	assert.ErrorIs(t, err, ErrNotSiteHost)
}

func TestBlockDatesConflictsWithBookedRange(t *testing.T) {
	factory, availability := newCalendarFixture(t)
	h := &BlockDatesHandler{UoWFactory: factory}

	from, to := window(t, 10, 3)
	dr, err := daterange.New(from, to)
	require.NoError(t, err)
	require.NoError(t, availability.ClaimRange(context.Background(), "site-1", dr, domainavailability.BlockBooked, "CN-TESTBOOK"))

	_, err = h.Handle(context.Background(), BlockDatesCommand{
		HostID: "host-1",
		SiteID: "site-1",
		From:   from.AddDate(0, 0, 2),
		To:     from.AddDate(0, 0, 4),
	})
	assert.ErrorIs(t, err, domainavailability.ErrRangeConflict)
}

func TestUnblockReleasesOnlyHostBlocks(t *testing.T) {
	factory, availability := newCalendarFixture(t)
	block := &BlockDatesHandler{UoWFactory: factory}
	unblock := &UnblockDatesHandler{UoWFactory: factory}

	blockFrom, blockTo := window(t, 10, 2)
	_, err := block.Handle(context.Background(), BlockDatesCommand{
		HostID: "host-1", SiteID: "site-1", From: blockFrom, To: blockTo, Reason: "mowing",
	})
	require.NoError(t, err)

	bookedFrom, bookedTo := window(t, 14, 2)
	bookedRange, err := daterange.New(bookedFrom, bookedTo)
	require.NoError(t, err)
	require.NoError(t, availability.ClaimRange(context.Background(), "site-1", bookedRange, domainavailability.BlockBooked, "CN-TESTBOOK"))

	// Unblock the whole window; the booked nights must survive.
	_, err = unblock.Handle(context.Background(), UnblockDatesCommand{
		HostID: "host-1", SiteID: "site-1", From: blockFrom, To: bookedTo,
	})
	require.NoError(t, err)

	hostRange, err := daterange.New(blockFrom, blockTo)
	require.NoError(t, err)
	free, err := availability.IsRangeFree(context.Background(), "site-1", hostRange)
	require.NoError(t, err)
	assert.True(t, free)

	free, err = availability.IsRangeFree(context.Background(), "site-1", bookedRange)
	require.NoError(t, err)
	assert.False(t, free)
}

func TestSiteCalendarListsBlockedDates(t *testing.T) {
	factory, _ := newCalendarFixture(t)
	block := &BlockDatesHandler{UoWFactory: factory}
	calendar := &SiteCalendarHandler{UoWFactory: factory}

	from, to := window(t, 10, 2)
	_, err := block.Handle(context.Background(), BlockDatesCommand{
		HostID: "host-1", SiteID: "site-1", From: from, To: to, Reason: "maintenance",
	})
	require.NoError(t, err)

	view, err := calendar.Handle(context.Background(), SiteCalendarQuery{
		SiteID: "site-1",
		From:   from.AddDate(0, 0, -5),
		To:     to.AddDate(0, 0, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, "site-1", view.SiteID)
	require.Len(t, view.Blocked, 2)
	assert.Equal(t, string(domainavailability.BlockHostBlocked), view.Blocked[0].BlockType)

	// An unknown site is a not found, not an empty calendar.
	_, err = calendar.Handle(context.Background(), SiteCalendarQuery{SiteID: "nope", From: from, To: to})
	assert.ErrorIs(t, err, domainsites.ErrSiteNotFound)
}

func TestUnavailableSitesQuery(t *testing.T) {
	factory, availability := newCalendarFixture(t)
	h := &UnavailableSitesHandler{UoWFactory: factory}

	from, to := window(t, 10, 2)
	dr, err := daterange.New(from, to)
	require.NoError(t, err)
	require.NoError(t, availability.ClaimRange(context.Background(), "site-1", dr, domainavailability.BlockBooked, "CN-TESTBOOK"))

	view, err := h.Handle(context.Background(), UnavailableSitesQuery{From: from, To: to})
	require.NoError(t, err)
	assert.Equal(t, []string{"site-1"}, view.SiteIDs)

	// A window after the stay reports nothing.
	view, err = h.Handle(context.Background(), UnavailableSitesQuery{From: to, To: to.AddDate(0, 0, 2)})
	require.NoError(t, err)
	assert.Empty(t, view.SiteIDs)
}
