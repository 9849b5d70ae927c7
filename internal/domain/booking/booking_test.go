package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campnest/internal/domain/pricing"
	"campnest/internal/domain/shared/daterange"
	"campnest/internal/domain/sites"
)

func testSite(instantBook bool) *sites.Site {
	return &sites.Site{
		ID:          "site-1",
		PropertyID:  "prop-1",
		Host:        "host-1",
		Name:        "Riverside pitch",
		Capacity:    sites.Capacity{MaxGuests: 4, MaxPets: 1, MaxVehicles: 1},
		Tariff:      sites.Tariff{Currency: "EUR", BasePrice: 100},
		MinNights:   1,
		InstantBook: instantBook,
		State:       sites.SiteActive,
	}
}

func testRange(t *testing.T) daterange.DateRange {
	t.Helper()
	r, err := daterange.New(
		time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, 12, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return r
}

func newTestBooking(t *testing.T, instantBook bool) *Booking {
	t.Helper()
	b, err := New(CreateParams{
		ID:        "bk-1",
		Code:      NewCode(),
		Site:      testSite(instantBook),
		GuestID:   "guest-1",
		Range:     testRange(t),
		Occupancy: Occupancy{Guests: 2},
		Price:     pricing.Breakdown{Currency: "EUR", Nights: 2, Subtotal: 200, Total: 200},
		Schedule:  DefaultSchedule(),
		Now:       time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestNewStartsPending(t *testing.T) {
	b := newTestBooking(t, false)

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentUnpaid, b.PaymentStatus)
	assert.Equal(t, 2, b.Nights)
	assert.Equal(t, sites.HostID("host-1"), b.HostID)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.requested", events[0].EventName())
}

func TestNewInstantBookConfirmsImmediately(t *testing.T) {
	b := newTestBooking(t, true)

	assert.Equal(t, StatusConfirmed, b.Status)

	events := b.PendingEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "booking.confirmed", events[1].EventName())
}

func TestConfirmOnlyFromPending(t *testing.T) {
	now := time.Date(2026, time.June, 2, 10, 0, 0, 0, time.UTC)

	b := newTestBooking(t, false)
	require.NoError(t, b.Confirm("see you soon", now))
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, "see you soon", b.HostMessage)

	// Confirming twice is illegal.
	assert.ErrorIs(t, b.Confirm("", now), ErrInvalidState)

	cancelled := newTestBooking(t, false)
	require.NoError(t, cancelled.Cancel(CancelledByGuest, "plans changed", now))
	assert.ErrorIs(t, cancelled.Confirm("", now), ErrInvalidState)
}

func TestCancelRecordsRefundSplit(t *testing.T) {
	b := newTestBooking(t, false)

	// More than a week ahead of the July 10 check-in: full refund.
	early := time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, b.Cancel(CancelledByGuest, "plans changed", early))

	assert.Equal(t, StatusCancelled, b.Status)
	require.NotNil(t, b.Cancellation)
	assert.Equal(t, CancelledByGuest, b.Cancellation.Actor)
	assert.Equal(t, int64(200), b.Cancellation.Refund)
	assert.Zero(t, b.Cancellation.Penalty)

	// Terminal: no further transitions.
	assert.ErrorIs(t, b.Cancel(CancelledByHost, "", early), ErrInvalidState)
	assert.ErrorIs(t, b.Complete(b.Range.CheckOut), ErrInvalidState)
}

func TestCompleteRequiresCheckOutPassed(t *testing.T) {
	now := time.Date(2026, time.June, 2, 10, 0, 0, 0, time.UTC)
	b := newTestBooking(t, false)
	require.NoError(t, b.Confirm("", now))

	assert.ErrorIs(t, b.Complete(time.Date(2026, time.July, 11, 0, 0, 0, 0, time.UTC)), ErrStayNotFinished)

	require.NoError(t, b.Complete(time.Date(2026, time.July, 12, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, StatusCompleted, b.Status)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	b := newTestBooking(t, false)
	assert.ErrorIs(t, b.Complete(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)), ErrInvalidState)
}

func TestMarkReviewedOnce(t *testing.T) {
	now := time.Date(2026, time.July, 13, 0, 0, 0, 0, time.UTC)
	b := newTestBooking(t, false)

	assert.ErrorIs(t, b.MarkReviewed("rev-1", now), ErrNotCompleted)

	require.NoError(t, b.Confirm("", now))
	require.NoError(t, b.Complete(now))
	require.NoError(t, b.MarkReviewed("rev-1", now))
	assert.True(t, b.Reviewed)
	assert.Equal(t, "rev-1", b.ReviewID)

	assert.ErrorIs(t, b.MarkReviewed("rev-2", now), ErrAlreadyReviewed)
	assert.Equal(t, "rev-1", b.ReviewID)
}

func TestApplyPaymentTouchesOnlyPaymentStatus(t *testing.T) {
	now := time.Date(2026, time.June, 2, 10, 0, 0, 0, time.UTC)
	b := newTestBooking(t, false)
	statusBefore := b.Status

	changed := b.ApplyPayment(PaymentPaid, now)
	assert.True(t, changed)
	assert.Equal(t, PaymentPaid, b.PaymentStatus)
	assert.Equal(t, statusBefore, b.Status)

	// Webhook replay: same status is a no-op.
	updatedAt := b.UpdatedAt
	changed = b.ApplyPayment(PaymentPaid, now.Add(time.Hour))
	assert.False(t, changed)
	assert.Equal(t, updatedAt, b.UpdatedAt)

	// Payment transitions stay legal on terminal bookings.
	require.NoError(t, b.Cancel(CancelledByGuest, "", now))
	assert.True(t, b.ApplyPayment(PaymentFailed, now))
	assert.Equal(t, StatusCancelled, b.Status)
}

func TestCancellationScheduleTiers(t *testing.T) {
	checkIn := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)
	s := DefaultSchedule()

	cases := []struct {
		name     string
		cancelAt time.Time
		refund   int64
		penalty  int64
	}{
		{"a week ahead refunds everything", checkIn.AddDate(0, 0, -7), 1000, 0},
		{"well ahead refunds everything", checkIn.AddDate(0, 0, -30), 1000, 0},
		{"three days ahead refunds half", checkIn.AddDate(0, 0, -3), 500, 500},
		{"exactly one day ahead refunds half", checkIn.AddDate(0, 0, -1), 500, 500},
		{"hours before refunds nothing", checkIn.Add(-6 * time.Hour), 0, 1000},
		{"after check-in refunds nothing", checkIn.Add(24 * time.Hour), 0, 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			refund, penalty := s.Split(1000, tc.cancelAt, checkIn)
			assert.Equal(t, tc.refund, refund)
			assert.Equal(t, tc.penalty, penalty)
		})
	}
}

func TestCancellationScheduleZeroTotal(t *testing.T) {
	refund, penalty := DefaultSchedule().Split(0, time.Now(), time.Now())
	assert.Zero(t, refund)
	assert.Zero(t, penalty)
}

func TestNewCodeFormat(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		code := NewCode()
		require.Len(t, code, len("CN-")+8)
		require.True(t, strings.HasPrefix(code, "CN-"))
		for _, r := range code[3:] {
			assert.Contains(t, codeAlphabet, string(r))
		}
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, 100)
}
