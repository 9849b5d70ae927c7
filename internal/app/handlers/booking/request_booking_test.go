package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "campnest/internal/domain/availability"
	domainbooking "campnest/internal/domain/booking"
	domainrange "campnest/internal/domain/shared/daterange"
	domainsites "campnest/internal/domain/sites"
	"campnest/internal/infra/storage/memory"
)

type fixture struct {
	factory      memory.Factory
	availability *memory.AvailabilityRepository
	bookings     *memory.BookingRepository
	sites        *memory.SiteRepository
	outbox       *memory.Outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		availability: memory.NewAvailabilityRepository(),
		bookings:     memory.NewBookingRepository(),
		sites:        memory.NewSiteRepository(),
		outbox:       memory.NewOutbox(),
	}
	f.factory = memory.Factory{
		PropertiesRepo:   memory.NewPropertyRepository(),
		SitesRepo:        f.sites,
		AvailabilityRepo: f.availability,
		BookingRepo:      f.bookings,
		ReviewsRepo:      memory.NewReviewRepository(),
	}
	return f
}

func (f *fixture) seedSite(t *testing.T, instantBook bool, mutate func(*domainsites.Site)) *domainsites.Site {
	t.Helper()
	site, err := domainsites.NewSite(domainsites.CreateSiteParams{
		ID:          "site-1",
		PropertyID:  "prop-1",
		Host:        "host-1",
		Name:        "Riverside pitch",
		Capacity:    domainsites.Capacity{MaxGuests: 4, MaxPets: 1, MaxVehicles: 1},
		Tariff:      domainsites.Tariff{Currency: "EUR", BasePrice: 100},
		MinNights:   1,
		InstantBook: instantBook,
		Now:         time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, site.Activate(time.Now().UTC()))
	if mutate != nil {
		mutate(site)
	}
	require.NoError(t, f.sites.Save(context.Background(), site))
	return site
}

func futureRange(t *testing.T, daysAhead, nights int) (time.Time, time.Time) {
	t.Helper()
	checkIn := domainrange.Truncate(time.Now().UTC()).AddDate(0, 0, daysAhead)
	return checkIn, checkIn.AddDate(0, 0, nights)
}

func requestCommand(id string, checkIn, checkOut time.Time) RequestBookingCommand {
	return RequestBookingCommand{
		CommandID: id,
		SiteID:    "site-1",
		GuestID:   "guest-1",
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    2,
	}
}

func TestRequestBookingHappyPath(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn, checkOut := futureRange(t, 30, 2)
	view, err := h.Handle(context.Background(), requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)

	assert.Equal(t, string(domainbooking.StatusPending), view.Status)
	assert.Equal(t, int64(200), view.Price.Total)
	assert.Regexp(t, `^CN-[A-Z2-9]{8}$`, view.Code)
	assert.Empty(t, view.CheckoutURL)

	dr, err := domainrange.New(checkIn, checkOut)
	require.NoError(t, err)
	blocked, err := f.availability.BlockedInRange(context.Background(), "site-1", dr)
	require.NoError(t, err)
	require.Len(t, blocked, 2)
	for _, rec := range blocked {
		assert.Equal(t, domainavailability.BlockBooked, rec.BlockType)
		assert.Equal(t, view.Code, rec.Reason)
	}

	staged := f.outbox.Staged()
	require.Len(t, staged, 1)
	assert.Equal(t, "booking.requested", staged[0].Name)
}

func TestRequestBookingInstantBookConfirms(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, true, nil)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn, checkOut := futureRange(t, 30, 2)
	view, err := h.Handle(context.Background(), requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)

	assert.Equal(t, string(domainbooking.StatusConfirmed), view.Status)

	staged := f.outbox.Staged()
	require.Len(t, staged, 2)
	assert.Equal(t, "booking.confirmed", staged[1].Name)
}

func TestRequestBookingOverlapConflicts(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn, checkOut := futureRange(t, 30, 3)
	_, err := h.Handle(context.Background(), requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)

	// Overlapping by one night.
	_, err = h.Handle(context.Background(), requestCommand("bk-2", checkIn.AddDate(0, 0, 2), checkIn.AddDate(0, 0, 5)))
	assert.ErrorIs(t, err, domainavailability.ErrRangeConflict)

	// Back-to-back is fine.
	_, err = h.Handle(context.Background(), requestCommand("bk-3", checkOut, checkOut.AddDate(0, 0, 2)))
	assert.NoError(t, err)
}

func TestRequestBookingPolicyChecks(t *testing.T) {
	checkIn, checkOut := futureRange(t, 30, 2)

	cases := []struct {
		name   string
		mutate func(*domainsites.Site)
		cmd    func(RequestBookingCommand) RequestBookingCommand
		want   error
	}{
		{
			name: "too many guests without overage fee",
			cmd: func(c RequestBookingCommand) RequestBookingCommand {
				c.Guests = 6
				return c
			},
			want: ErrTooManyGuests,
		},
		{
			name: "pets on a no-pet site",
			mutate: func(s *domainsites.Site) {
				s.Capacity.MaxPets = 0
			},
			cmd: func(c RequestBookingCommand) RequestBookingCommand {
				c.Pets = 1
				return c
			},
			want: ErrPetsNotAllowed,
		},
		{
			name: "too many vehicles",
			cmd: func(c RequestBookingCommand) RequestBookingCommand {
				c.Vehicles = 2
				return c
			},
			want: ErrTooManyVehicles,
		},
		{
			name: "stay shorter than minimum",
			mutate: func(s *domainsites.Site) {
				s.MinNights = 3
			},
			cmd:  func(c RequestBookingCommand) RequestBookingCommand { return c },
			want: ErrStayTooShort,
		},
		{
			name: "stay longer than maximum",
			mutate: func(s *domainsites.Site) {
				s.MaxNights = 1
			},
			cmd:  func(c RequestBookingCommand) RequestBookingCommand { return c },
			want: ErrStayTooLong,
		},
		{
			name: "suspended site",
			mutate: func(s *domainsites.Site) {
				s.State = domainsites.SiteSuspended
			},
			cmd:  func(c RequestBookingCommand) RequestBookingCommand { return c },
			want: domainsites.ErrSiteInactive,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedSite(t, false, tc.mutate)
			h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

			_, err := h.Handle(context.Background(), tc.cmd(requestCommand("bk-1", checkIn, checkOut)))
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.outbox.Staged())
		})
	}
}

func TestRequestBookingExtraGuestsPricedWhenTariffAllows(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, func(s *domainsites.Site) {
		s.Tariff.ExtraGuestFee = 10
	})
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn, checkOut := futureRange(t, 30, 2)
	cmd := requestCommand("bk-1", checkIn, checkOut)
	cmd.Guests = 6

	view, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(40), view.Price.ExtraGuestFee)
}

func TestRequestBookingRejectsPastCheckIn(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn := domainrange.Truncate(time.Now().UTC()).AddDate(0, 0, -2)
	_, err := h.Handle(context.Background(), requestCommand("bk-1", checkIn, checkIn.AddDate(0, 0, 2)))
	assert.ErrorIs(t, err, domainrange.ErrCheckInInPast)
}

func TestConcurrentRequestsSingleWinner(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn, checkOut := futureRange(t, 30, 2)
	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := requestCommand("bk-"+string(rune('a'+i)), checkIn, checkOut)
			_, errs[i] = h.Handle(context.Background(), cmd)
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

	// No pair of stored active bookings overlaps.
	dr, err := domainrange.New(checkIn, checkOut)
	require.NoError(t, err)
	active, err := f.bookings.ListActiveOverlapping(context.Background(), "site-1", dr)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCancelReleasesDatesForRebooking(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	request := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	cancel := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn, checkOut := futureRange(t, 30, 2)
	created, err := request.Handle(context.Background(), requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)

	// A stranger cannot cancel.
	_, err = cancel.Handle(context.Background(), CancelBookingCommand{ActorID: "someone-else", BookingID: created.ID})
	assert.ErrorIs(t, err, ErrNotBookingParty)

	view, err := cancel.Handle(context.Background(), CancelBookingCommand{ActorID: "guest-1", BookingID: created.ID, Reason: "plans changed"})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusCancelled), view.Status)

	dr, err := domainrange.New(checkIn, checkOut)
	require.NoError(t, err)
	free, err := f.availability.IsRangeFree(context.Background(), "site-1", dr)
	require.NoError(t, err)
	assert.True(t, free)

	// The same range books again.
	_, err = request.Handle(context.Background(), requestCommand("bk-2", checkIn, checkOut))
	assert.NoError(t, err)
}

func TestCancelKeepsHostBlocks(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	request := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	cancel := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn, checkOut := futureRange(t, 30, 2)
	created, err := request.Handle(context.Background(), requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)

	// Host blocks the two nights after the stay.
	hostRange, err := domainrange.New(checkOut, checkOut.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.NoError(t, f.availability.ClaimRange(context.Background(), "site-1", hostRange, domainavailability.BlockHostBlocked, "maintenance"))

	_, err = cancel.Handle(context.Background(), CancelBookingCommand{ActorID: "host-1", BookingID: created.ID})
	require.NoError(t, err)

	// The cancellation released only the booked rows.
	free, err := f.availability.IsRangeFree(context.Background(), "site-1", hostRange)
	require.NoError(t, err)
	assert.False(t, free)
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	request := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	confirm := &ConfirmBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn, checkOut := futureRange(t, 30, 2)
	created, err := request.Handle(context.Background(), requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)

	_, err = confirm.Handle(context.Background(), ConfirmBookingCommand{HostID: "other-host", BookingID: created.ID})
	assert.ErrorIs(t, err, ErrNotBookingHost)

	view, err := confirm.Handle(context.Background(), ConfirmBookingCommand{HostID: "host-1", BookingID: created.ID, Message: "welcome"})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusConfirmed), view.Status)

	// Confirming a cancelled booking is a bad request.
	cancel := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err = cancel.Handle(context.Background(), CancelBookingCommand{ActorID: "guest-1", BookingID: created.ID})
	require.NoError(t, err)
	_, err = confirm.Handle(context.Background(), ConfirmBookingCommand{HostID: "host-1", BookingID: created.ID})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidState)
}

func TestCompleteDueBookingsSweep(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, true, nil)
	request := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	sweep := &CompleteDueBookingsHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn, checkOut := futureRange(t, 5, 2)
	created, err := request.Handle(context.Background(), requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)

	// Nothing due yet.
	count, err := sweep.Handle(context.Background(), CompleteDueBookingsCommand{Now: checkIn})
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = sweep.Handle(context.Background(), CompleteDueBookingsCommand{Now: checkOut.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := f.bookings.ByID(context.Background(), domainbooking.BookingID(created.ID))
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCompleted, stored.Status)

	// Sweeping again finds nothing.
	count, err = sweep.Handle(context.Background(), CompleteDueBookingsCommand{Now: checkOut.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Zero(t, count)
}
