package booking

import (
	"context"
	"strings"
	"time"

	"campnest/internal/domain/pricing"
	"campnest/internal/domain/shared/daterange"
	"campnest/internal/domain/shared/events"
	"campnest/internal/domain/shared/fault"
	"campnest/internal/domain/sites"
)

type BookingID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// Terminal reports whether no further status transition is legal.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
	PaymentFailed PaymentStatus = "FAILED"
)

type CancelActor string

const (
	CancelledByGuest CancelActor = "guest"
	CancelledByHost  CancelActor = "host"
)

var (
	ErrBookingNotFound  = fault.NotFound("booking_not_found", "booking does not exist")
	ErrInvalidState     = fault.BadRequest("booking_invalid_state", "invalid booking state transition")
	ErrStayNotFinished  = fault.BadRequest("booking_stay_not_finished", "stay has not finished yet")
	ErrAlreadyReviewed  = fault.Conflict("booking_already_reviewed", "booking already has a review")
	ErrNotCompleted     = fault.BadRequest("booking_not_completed", "booking is not completed")
	ErrInvalidOccupancy = fault.BadRequest("booking_occupancy", "guest count must be positive")
)

// Occupancy records who arrives with the booking.
type Occupancy struct {
	Guests   int
	Pets     int
	Vehicles int
}

// Cancellation is the audit record of a cancel transition.
type Cancellation struct {
	Actor   CancelActor
	Reason  string
	At      time.Time
	Refund  int64
	Penalty int64
}

// Booking is the reservation aggregate. It is never deleted: cancellation is
// a status transition so calendar accounting and audit history stay intact.
type Booking struct {
	ID            BookingID
	Code          string
	SiteID        sites.SiteID
	PropertyID    sites.PropertyID
	GuestID       string
	HostID        sites.HostID
	Range         daterange.DateRange
	Nights        int
	Occupancy     Occupancy
	Price         pricing.Breakdown
	Schedule      CancellationSchedule
	Status        Status
	PaymentStatus PaymentStatus
	CheckoutURL   string
	GuestMessage  string
	HostMessage   string
	Cancellation  *Cancellation
	Reviewed      bool
	ReviewID      string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ByCode(ctx context.Context, code string) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByHost(ctx context.Context, hostID sites.HostID) ([]*Booking, error)
	ListBySite(ctx context.Context, siteID sites.SiteID) ([]*Booking, error)
	// ListActiveOverlapping returns pending/confirmed bookings for the site
	// whose half-open range overlaps dr.
	ListActiveOverlapping(ctx context.Context, siteID sites.SiteID, dr daterange.DateRange) ([]*Booking, error)
	// ListDueForCompletion returns confirmed bookings whose check-out is at
	// or before the given instant.
	ListDueForCompletion(ctx context.Context, now time.Time, limit int) ([]*Booking, error)
}

type CreateParams struct {
	ID           BookingID
	Code         string
	Site         *sites.Site
	GuestID      string
	Range        daterange.DateRange
	Occupancy    Occupancy
	Price        pricing.Breakdown
	Schedule     CancellationSchedule
	GuestMessage string
	Now          time.Time
}

// New builds a booking in PENDING, or directly CONFIRMED when the site has
// instant book enabled. Capacity and policy checks are assumed done by the
// caller against the same site snapshot used for pricing.
func New(params CreateParams) (*Booking, error) {
	if params.Occupancy.Guests <= 0 {
		return nil, ErrInvalidOccupancy
	}
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, fault.BadRequest("booking_guest_required", "guest id is required")
	}
	if params.Site == nil {
		return nil, sites.ErrSiteNotFound
	}
	now := params.Now.UTC()
	b := &Booking{
		ID:            params.ID,
		Code:          params.Code,
		SiteID:        params.Site.ID,
		PropertyID:    params.Site.PropertyID,
		GuestID:       params.GuestID,
		HostID:        params.Site.Host,
		Range:         params.Range,
		Nights:        params.Range.Nights(),
		Occupancy:     params.Occupancy,
		Price:         params.Price,
		Schedule:      params.Schedule,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		GuestMessage:  strings.TrimSpace(params.GuestMessage),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(BookingRequested{BookingID: b.ID, Code: b.Code, SiteID: b.SiteID, GuestID: b.GuestID, Range: b.Range, Guests: b.Occupancy.Guests, Total: b.Price.Total, At: now})
	if params.Site.InstantBook {
		b.Status = StatusConfirmed
		b.Record(BookingConfirmed{BookingID: b.ID, SiteID: b.SiteID, Range: b.Range, Instant: true, At: now})
	}
	return b, nil
}

// Confirm moves a pending booking to confirmed. Host-only; the handler
// checks the caller, the aggregate checks the state.
func (b *Booking) Confirm(hostMessage string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	if msg := strings.TrimSpace(hostMessage); msg != "" {
		b.HostMessage = msg
	}
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, SiteID: b.SiteID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

// Cancel transitions a live booking to cancelled, recording who and why plus
// the refund split from the snapshotted schedule. The caller releases the
// calendar range in the same unit of work.
func (b *Booking) Cancel(actor CancelActor, reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidState
	}
	at := now.UTC()
	refund, penalty := b.Schedule.Split(b.Price.Total, at, b.Range.CheckIn)
	b.Status = StatusCancelled
	b.Cancellation = &Cancellation{
		Actor:   actor,
		Reason:  strings.TrimSpace(reason),
		At:      at,
		Refund:  refund,
		Penalty: penalty,
	}
	b.UpdatedAt = at
	b.Record(BookingCancelled{BookingID: b.ID, SiteID: b.SiteID, Range: b.Range, Actor: actor, Reason: b.Cancellation.Reason, Refund: refund, Penalty: penalty, At: at})
	return nil
}

// Complete closes out a confirmed booking once the stay is over.
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	at := now.UTC()
	if at.Before(b.Range.CheckOut) {
		return ErrStayNotFinished
	}
	b.Status = StatusCompleted
	b.UpdatedAt = at
	b.Record(BookingCompleted{BookingID: b.ID, SiteID: b.SiteID, At: at})
	return nil
}

// MarkReviewed links a review exactly once, after completion.
func (b *Booking) MarkReviewed(reviewID string, now time.Time) error {
	if b.Status != StatusCompleted {
		return ErrNotCompleted
	}
	if b.Reviewed {
		return ErrAlreadyReviewed
	}
	b.Reviewed = true
	b.ReviewID = reviewID
	b.UpdatedAt = now.UTC()
	return nil
}

// ApplyPayment sets the payment status from a provider callback. The booking
// status itself is untouched: confirmation and cancellation stay host, guest
// and instant-book decisions.
//
// Applying the same status twice is a no-op, which makes webhook replays
// harmless.
func (b *Booking) ApplyPayment(status PaymentStatus, now time.Time) bool {
	if b.PaymentStatus == status {
		return false
	}
	b.PaymentStatus = status
	b.UpdatedAt = now.UTC()
	b.Record(BookingPaymentUpdated{BookingID: b.ID, Code: b.Code, Payment: status, At: b.UpdatedAt})
	return true
}

// SetCheckoutURL stores the payment link once the provider call succeeds.
func (b *Booking) SetCheckoutURL(url string) {
	b.CheckoutURL = strings.TrimSpace(url)
}

// Active reports whether the booking still holds its calendar dates.
func (b *Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}
