package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campnest/internal/app/dto"
)

func TestListBookingsByGuestAndHost(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	request := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	firstIn, firstOut := futureRange(t, 30, 2)
	_, err := request.Handle(context.Background(), requestCommand("bk-1", firstIn, firstOut))
	require.NoError(t, err)
	secondIn, secondOut := futureRange(t, 40, 3)
	_, err = request.Handle(context.Background(), requestCommand("bk-2", secondIn, secondOut))
	require.NoError(t, err)

	guestList := &GuestBookingsHandler{UoWFactory: f.factory}
	mine, err := guestList.Handle(context.Background(), GuestBookingsQuery{GuestID: "guest-1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, b := range mine {
		assert.Equal(t, "guest-1", b.GuestID)
	}

	none, err := guestList.Handle(context.Background(), GuestBookingsQuery{GuestID: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, none)

	hostList := &HostBookingsHandler{UoWFactory: f.factory}
	arriving, err := hostList.Handle(context.Background(), HostBookingsQuery{HostID: "host-1"})
	require.NoError(t, err)
	assert.Len(t, arriving, 2)
}

func TestListBookingsBySiteRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	request := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	checkIn, checkOut := futureRange(t, 30, 2)
	_, err := request.Handle(context.Background(), requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)

	siteList := &SiteBookingsHandler{UoWFactory: f.factory}
	_, err = siteList.Handle(context.Background(), SiteBookingsQuery{HostID: "imposter", SiteID: "site-1"})
	assert.ErrorIs(t, err, ErrNotBookingHost)

	var list []dto.Booking
	list, err = siteList.Handle(context.Background(), SiteBookingsQuery{HostID: "host-1", SiteID: "site-1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "site-1", list[0].SiteID)
	assert.Equal(t, "bk-1", list[0].ID)
}
