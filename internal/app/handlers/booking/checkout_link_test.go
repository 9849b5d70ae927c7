package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	"campnest/internal/app/middleware"
	"campnest/internal/app/policies"
	domainbooking "campnest/internal/domain/booking"
)

type stubCheckoutProvider struct {
	err      error
	requests []policies.CheckoutRequest
}

func (p *stubCheckoutProvider) CreateCheckout(_ context.Context, req policies.CheckoutRequest) (policies.CheckoutSession, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return policies.CheckoutSession{}, p.err
	}
	return policies.CheckoutSession{CheckoutURL: "https://pay.example.com/s/" + req.OrderRef}, nil
}

func newCheckoutBus(f *fixture, provider policies.PaymentsPort) commands.Bus {
	reg := commands.NewRegistry()
	commands.Register[RequestBookingCommand, *dto.Booking](reg, &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox})
	return middleware.ChainCommands(
		reg,
		middleware.CheckoutLink(provider, f.factory, nil),
		middleware.Transaction(f.factory, nil),
	)
}

func TestCheckoutLinkRequestedAfterCommit(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	provider := &stubCheckoutProvider{}
	bus := newCheckoutBus(f, provider)

	checkIn, checkOut := futureRange(t, 30, 2)
	view, err := commands.Dispatch[RequestBookingCommand, *dto.Booking](context.Background(), bus, requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)

	require.Len(t, provider.requests, 1)
	assert.Equal(t, view.Code, provider.requests[0].OrderRef)
	assert.Equal(t, int64(200), provider.requests[0].Amount)
	assert.Equal(t, "EUR", provider.requests[0].Currency)
	assert.Equal(t, "https://pay.example.com/s/"+view.Code, view.CheckoutURL)

	// The link landed in storage through its own write, after the
	// reservation committed.
	stored, err := f.bookings.ByID(context.Background(), domainbooking.BookingID(view.ID))
	require.NoError(t, err)
	assert.Equal(t, view.CheckoutURL, stored.CheckoutURL)
	assert.Equal(t, domainbooking.StatusPending, stored.Status)
}

func TestCheckoutLinkProviderFailureKeepsReservation(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	provider := &stubCheckoutProvider{err: errors.New("gateway timeout")}
	bus := newCheckoutBus(f, provider)

	checkIn, checkOut := futureRange(t, 30, 2)
	view, err := commands.Dispatch[RequestBookingCommand, *dto.Booking](context.Background(), bus, requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)

	// The booking stands; only the link is missing.
	assert.Empty(t, view.CheckoutURL)
	stored, err := f.bookings.ByID(context.Background(), domainbooking.BookingID(view.ID))
	require.NoError(t, err)
	assert.Empty(t, stored.CheckoutURL)
	assert.Equal(t, domainbooking.StatusPending, stored.Status)
}

func TestCheckoutLinkSkippedWithoutProvider(t *testing.T) {
	f := newFixture(t)
	f.seedSite(t, false, nil)
	bus := newCheckoutBus(f, nil)

	checkIn, checkOut := futureRange(t, 30, 2)
	view, err := commands.Dispatch[RequestBookingCommand, *dto.Booking](context.Background(), bus, requestCommand("bk-1", checkIn, checkOut))
	require.NoError(t, err)
	assert.Empty(t, view.CheckoutURL)
}
