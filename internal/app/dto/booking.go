package dto

import (
	"time"

	domainbooking "campnest/internal/domain/booking"
)

type PriceBreakdown struct {
	Currency      string `json:"currency"`
	Nights        int    `json:"nights"`
	Subtotal      int64  `json:"subtotal"`
	CleaningFee   int64  `json:"cleaning_fee"`
	PetFee        int64  `json:"pet_fee"`
	ExtraGuestFee int64  `json:"extra_guest_fee"`
	ServiceFee    int64  `json:"service_fee"`
	Tax           int64  `json:"tax"`
	Total         int64  `json:"total"`
}

type Cancellation struct {
	Actor   string    `json:"actor"`
	Reason  string    `json:"reason,omitempty"`
	At      time.Time `json:"at"`
	Refund  int64     `json:"refund"`
	Penalty int64     `json:"penalty"`
}

// Booking is the full projection returned by every lifecycle operation.
type Booking struct {
	ID            string         `json:"id"`
	Code          string         `json:"code"`
	SiteID        string         `json:"site_id"`
	PropertyID    string         `json:"property_id"`
	GuestID       string         `json:"guest_id"`
	HostID        string         `json:"host_id"`
	CheckIn       time.Time      `json:"check_in"`
	CheckOut      time.Time      `json:"check_out"`
	Nights        int            `json:"nights"`
	Guests        int            `json:"guests"`
	Pets          int            `json:"pets"`
	Vehicles      int            `json:"vehicles"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"payment_status"`
	CheckoutURL   string         `json:"checkout_url,omitempty"`
	Price         PriceBreakdown `json:"price"`
	GuestMessage  string         `json:"guest_message,omitempty"`
	HostMessage   string         `json:"host_message,omitempty"`
	Cancellation  *Cancellation  `json:"cancellation,omitempty"`
	Reviewed      bool           `json:"reviewed"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	view := Booking{
		ID:            string(b.ID),
		Code:          b.Code,
		SiteID:        string(b.SiteID),
		PropertyID:    string(b.PropertyID),
		GuestID:       b.GuestID,
		HostID:        string(b.HostID),
		CheckIn:       b.Range.CheckIn,
		CheckOut:      b.Range.CheckOut,
		Nights:        b.Nights,
		Guests:        b.Occupancy.Guests,
		Pets:          b.Occupancy.Pets,
		Vehicles:      b.Occupancy.Vehicles,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		CheckoutURL:   b.CheckoutURL,
		Price: PriceBreakdown{
			Currency:      b.Price.Currency,
			Nights:        b.Price.Nights,
			Subtotal:      b.Price.Subtotal,
			CleaningFee:   b.Price.CleaningFee,
			PetFee:        b.Price.PetFee,
			ExtraGuestFee: b.Price.ExtraGuestFee,
			ServiceFee:    b.Price.ServiceFee,
			Tax:           b.Price.Tax,
			Total:         b.Price.Total,
		},
		GuestMessage: b.GuestMessage,
		HostMessage:  b.HostMessage,
		Reviewed:     b.Reviewed,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if b.Cancellation != nil {
		view.Cancellation = &Cancellation{
			Actor:   string(b.Cancellation.Actor),
			Reason:  b.Cancellation.Reason,
			At:      b.Cancellation.At,
			Refund:  b.Cancellation.Refund,
			Penalty: b.Cancellation.Penalty,
		}
	}
	return view
}

func MapBookings(items []*domainbooking.Booking) []Booking {
	out := make([]Booking, 0, len(items))
	for _, b := range items {
		out = append(out, MapBooking(b))
	}
	return out
}
