package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "campnest/internal/domain/booking"
	domainpricing "campnest/internal/domain/pricing"
	domainreviews "campnest/internal/domain/reviews"
	domainrange "campnest/internal/domain/shared/daterange"
	domainsites "campnest/internal/domain/sites"
	"campnest/internal/infra/storage/memory"
)

type reviewFixture struct {
	factory  memory.Factory
	sites    *memory.SiteRepository
	props    *memory.PropertyRepository
	bookings *memory.BookingRepository
	reviews  *memory.ReviewRepository
	outbox   *memory.Outbox
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		sites:    memory.NewSiteRepository(),
		props:    memory.NewPropertyRepository(),
		bookings: memory.NewBookingRepository(),
		reviews:  memory.NewReviewRepository(),
		outbox:   memory.NewOutbox(),
	}
	f.factory = memory.Factory{
		PropertiesRepo:   f.props,
		SitesRepo:        f.sites,
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		BookingRepo:      f.bookings,
		ReviewsRepo:      f.reviews,
	}

	now := time.Now().UTC()
	property, err := domainsites.NewProperty(domainsites.CreatePropertyParams{
		ID:   "prop-1",
		Host: "host-1",
		Name: "Pine Hollow",
		Now:  now,
	})
	require.NoError(t, err)
	require.NoError(t, f.props.Save(context.Background(), property))

	site, err := domainsites.NewSite(domainsites.CreateSiteParams{
		ID:         "site-1",
		PropertyID: "prop-1",
		Host:       "host-1",
		Name:       "Pitch A",
		Capacity:   domainsites.Capacity{MaxGuests: 4},
		Tariff:     domainsites.Tariff{Currency: "EUR", BasePrice: 100},
		Now:        now,
	})
	require.NoError(t, err)
	require.NoError(t, f.sites.Save(context.Background(), site))
	return f
}

// seedCompletedStay stores a booking that has run its full course.
func (f *reviewFixture) seedCompletedStay(t *testing.T, id string) *domainbooking.Booking {
	t.Helper()
	site, err := f.sites.ByID(context.Background(), "site-1")
	require.NoError(t, err)

	checkIn := domainrange.Truncate(time.Now().UTC()).AddDate(0, 0, 10)
	dr, err := domainrange.New(checkIn, checkIn.AddDate(0, 0, 2))
	require.NoError(t, err)

	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(id),
		Code:      domainbooking.NewCode(),
		Site:      site,
		GuestID:   "guest-1",
		Range:     dr,
		Occupancy: domainbooking.Occupancy{Guests: 2},
		Price:     domainpricing.Breakdown{Currency: "EUR", Nights: 2, Subtotal: 200, Total: 200},
		Schedule:  domainbooking.DefaultSchedule(),
		Now:       time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, b.Confirm("", time.Now().UTC()))
	require.NoError(t, b.Complete(dr.CheckOut.Add(time.Hour)))
	b.ClearEvents()
	require.NoError(t, f.bookings.Save(context.Background(), b))
	return b
}

func submitCommand(bookingID string) SubmitReviewCommand {
	return SubmitReviewCommand{
		AuthorID:      "guest-1",
		BookingID:     bookingID,
		Location:      5,
		Communication: 4,
		Value:         5,
		Cleanliness:   4,
		Accuracy:      5,
		Amenities:     3,
		Text:          "Quiet spot close to the river.",
	}
}

func TestSubmitReviewPublishesAndRecounts(t *testing.T) {
	f := newReviewFixture(t)
	f.seedCompletedStay(t, "bk-1")
	h := &SubmitReviewHandler{UoWFactory: f.factory, Outbox: f.outbox}

	view, err := h.Handle(context.Background(), submitCommand("bk-1"))
	require.NoError(t, err)
	assert.True(t, view.Published)
	assert.Equal(t, "bk-1", view.BookingID)

	booked, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.True(t, booked.Reviewed)
	assert.Equal(t, view.ID, booked.ReviewID)

	site, err := f.sites.ByID(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Equal(t, 1, site.Rating.Count)
	assert.InDelta(t, 4.0, site.Rating.Cleanliness, 0.001)
	assert.InDelta(t, 4.0, site.Rating.Overall, 0.001)

	property, err := f.props.ByID(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, 1, property.Rating.Count)
	assert.InDelta(t, 5.0, property.Rating.Location, 0.001)

	names := make([]string, 0)
	for _, rec := range f.outbox.Staged() {
		names = append(names, rec.Name)
	}
	assert.Contains(t, names, "review.submitted")
}

func TestSubmitReviewOncePerBooking(t *testing.T) {
	f := newReviewFixture(t)
	f.seedCompletedStay(t, "bk-1")
	h := &SubmitReviewHandler{UoWFactory: f.factory, Outbox: f.outbox}

	_, err := h.Handle(context.Background(), submitCommand("bk-1"))
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), submitCommand("bk-1"))
	assert.ErrorIs(t, err, domainreviews.ErrDuplicate)
}

func TestSubmitReviewRequiresBookingGuest(t *testing.T) {
	f := newReviewFixture(t)
	f.seedCompletedStay(t, "bk-1")
	h := &SubmitReviewHandler{UoWFactory: f.factory, Outbox: f.outbox}

	cmd := submitCommand("bk-1")
	cmd.AuthorID = "someone-else"
	_, err := h.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, ErrNotBookingGuest)
}

func TestSubmitReviewRequiresCompletedStay(t *testing.T) {
	f := newReviewFixture(t)
	site, err := f.sites.ByID(context.Background(), "site-1")
	require.NoError(t, err)

	checkIn := domainrange.Truncate(time.Now().UTC()).AddDate(0, 0, 10)
	dr, err := domainrange.New(checkIn, checkIn.AddDate(0, 0, 2))
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:        "bk-pending",
		Code:      domainbooking.NewCode(),
		Site:      site,
		GuestID:   "guest-1",
		Range:     dr,
		Occupancy: domainbooking.Occupancy{Guests: 2},
		Price:     domainpricing.Breakdown{Currency: "EUR", Nights: 2, Subtotal: 200, Total: 200},
		Schedule:  domainbooking.DefaultSchedule(),
		Now:       time.Now().UTC(),
	})
	require.NoError(t, err)
	b.ClearEvents()
	require.NoError(t, f.bookings.Save(context.Background(), b))

	h := &SubmitReviewHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err = h.Handle(context.Background(), submitCommand("bk-pending"))
	assert.ErrorIs(t, err, domainbooking.ErrNotCompleted)
}

func TestSubmitReviewRejectsOutOfRangeRatings(t *testing.T) {
	f := newReviewFixture(t)
	f.seedCompletedStay(t, "bk-1")
	h := &SubmitReviewHandler{UoWFactory: f.factory, Outbox: f.outbox}

	cmd := submitCommand("bk-1")
	cmd.Amenities = 6
	_, err := h.Handle(context.Background(), cmd)
	require.Error(t, err)

	// The failed submit left no trace.
	booked, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.False(t, booked.Reviewed)
}

func TestModerationRecountsRollups(t *testing.T) {
	f := newReviewFixture(t)
	f.seedCompletedStay(t, "bk-1")
	submit := &SubmitReviewHandler{UoWFactory: f.factory, Outbox: f.outbox}
	moderate := &ModerateReviewHandler{UoWFactory: f.factory, Outbox: f.outbox}

	view, err := submit.Handle(context.Background(), submitCommand("bk-1"))
	require.NoError(t, err)

	unpublished, err := moderate.HandleUnpublish(context.Background(), UnpublishReviewCommand{ReviewID: view.ID})
	require.NoError(t, err)
	assert.False(t, unpublished.Published)

	site, err := f.sites.ByID(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Zero(t, site.Rating.Count)

	republished, err := moderate.HandlePublish(context.Background(), PublishReviewCommand{ReviewID: view.ID})
	require.NoError(t, err)
	assert.True(t, republished.Published)

	site, err = f.sites.ByID(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Equal(t, 1, site.Rating.Count)

	// Unpublishing twice is a no-op.
	again, err := moderate.HandleUnpublish(context.Background(), UnpublishReviewCommand{ReviewID: view.ID})
	require.NoError(t, err)
	assert.False(t, again.Published)
}
