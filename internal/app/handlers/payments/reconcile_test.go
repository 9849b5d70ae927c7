package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "campnest/internal/domain/booking"
	domainpricing "campnest/internal/domain/pricing"
	domainrange "campnest/internal/domain/shared/daterange"
	domainsites "campnest/internal/domain/sites"
	"campnest/internal/infra/storage/memory"
)

func seedBooking(t *testing.T, repo *memory.BookingRepository, code string) *domainbooking.Booking {
	t.Helper()
	site, err := domainsites.NewSite(domainsites.CreateSiteParams{
		ID:         "site-1",
		PropertyID: "prop-1",
		Host:       "host-1",
		Name:       "Forest pitch",
		Capacity:   domainsites.Capacity{MaxGuests: 4},
		Tariff:     domainsites.Tariff{Currency: "EUR", BasePrice: 100},
		Now:        time.Now().UTC(),
	})
	require.NoError(t, err)

	checkIn := domainrange.Truncate(time.Now().UTC()).AddDate(0, 0, 10)
	dr, err := domainrange.New(checkIn, checkIn.AddDate(0, 0, 2))
	require.NoError(t, err)

	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:        domainbooking.BookingID("bk-" + code),
		Code:      code,
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
	require.NoError(t, repo.Save(context.Background(), b))
	return b
}

func newCallbackHandler(t *testing.T) (*ApplyPaymentCallbackHandler, *memory.BookingRepository, *memory.Outbox) {
	t.Helper()
	bookings := memory.NewBookingRepository()
	stage := memory.NewOutbox()
	factory := memory.Factory{
		PropertiesRepo:   memory.NewPropertyRepository(),
		SitesRepo:        memory.NewSiteRepository(),
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		BookingRepo:      bookings,
		ReviewsRepo:      memory.NewReviewRepository(),
	}
	return &ApplyPaymentCallbackHandler{UoWFactory: factory, Outbox: stage}, bookings, stage
}

func TestCallbackAppliesPayment(t *testing.T) {
	h, bookings, stage := newCallbackHandler(t)
	seedBooking(t, bookings, "CN-TESTPAID")

	res, err := h.Handle(context.Background(), ApplyPaymentCallbackCommand{Code: "CN-TESTPAID", Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, "CN-TESTPAID", res.Code)

	stored, err := bookings.ByCode(context.Background(), "CN-TESTPAID")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.PaymentPaid, stored.PaymentStatus)
	// The lifecycle status is untouched.
	assert.Equal(t, domainbooking.StatusPending, stored.Status)

	staged := stage.Staged()
	require.Len(t, staged, 1)
	assert.Equal(t, "booking.payment_updated", staged[0].Name)
}

func TestCallbackReplayIsDuplicate(t *testing.T) {
	h, bookings, stage := newCallbackHandler(t)
	seedBooking(t, bookings, "CN-TESTDUPE")

	res, err := h.Handle(context.Background(), ApplyPaymentCallbackCommand{Code: "CN-TESTDUPE", Status: "paid"})
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, res.Outcome)

	res, err = h.Handle(context.Background(), ApplyPaymentCallbackCommand{Code: "CN-TESTDUPE", Status: "settled"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, res.Outcome)

	// Only the first callback produced an event.
	assert.Len(t, stage.Staged(), 1)
}

func TestCallbackUnknownReferenceAcked(t *testing.T) {
	h, _, stage := newCallbackHandler(t)

	res, err := h.Handle(context.Background(), ApplyPaymentCallbackCommand{Code: "CN-NOSUCHBK", Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknown, res.Outcome)
	assert.Empty(t, stage.Staged())
}

func TestCallbackRejectsUnknownStatus(t *testing.T) {
	h, bookings, _ := newCallbackHandler(t)
	seedBooking(t, bookings, "CN-TESTBADS")

	_, err := h.Handle(context.Background(), ApplyPaymentCallbackCommand{Code: "CN-TESTBADS", Status: "pondering"})
	assert.ErrorIs(t, err, ErrUnknownProviderStatus)
}

func TestCallbackStatusMapping(t *testing.T) {
	cases := []struct {
		raw  string
		want domainbooking.PaymentStatus
	}{
		{"paid", domainbooking.PaymentPaid},
		{"Settled", domainbooking.PaymentPaid},
		{" succeeded ", domainbooking.PaymentPaid},
		{"failed", domainbooking.PaymentFailed},
		{"expired", domainbooking.PaymentFailed},
	}
	for _, tc := range cases {
		got, err := mapProviderStatus(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestCallbackLegalOnCancelledBooking(t *testing.T) {
	h, bookings, _ := newCallbackHandler(t)
	b := seedBooking(t, bookings, "CN-TESTCANC")
	require.NoError(t, b.Cancel(domainbooking.CancelledByGuest, "changed plans", time.Now().UTC()))
	b.ClearEvents()
	require.NoError(t, bookings.Save(context.Background(), b))

	res, err := h.Handle(context.Background(), ApplyPaymentCallbackCommand{Code: "CN-TESTCANC", Status: "failed"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)

	stored, err := bookings.ByCode(context.Background(), "CN-TESTCANC")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, stored.Status)
	assert.Equal(t, domainbooking.PaymentFailed, stored.PaymentStatus)
}
