package booking

import (
	"time"

	"campnest/internal/domain/shared/daterange"
	"campnest/internal/domain/sites"
)

type BookingRequested struct {
	BookingID BookingID
	Code      string
	SiteID    sites.SiteID
	GuestID   string
	Range     daterange.DateRange
	Guests    int
	Total     int64
	At        time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID
	SiteID    sites.SiteID
	Range     daterange.DateRange
	Instant   bool
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	SiteID    sites.SiteID
	Range     daterange.DateRange
	Actor     CancelActor
	Reason    string
	Refund    int64
	Penalty   int64
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID BookingID
	SiteID    sites.SiteID
	At        time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type BookingPaymentUpdated struct {
	BookingID BookingID
	Code      string
	Payment   PaymentStatus
	At        time.Time
}

func (e BookingPaymentUpdated) EventName() string     { return "booking.payment_updated" }
func (e BookingPaymentUpdated) AggregateID() string   { return string(e.BookingID) }
func (e BookingPaymentUpdated) OccurredAt() time.Time { return e.At }
