package pricing

import (
	"campnest/internal/domain/shared/fault"
	"campnest/internal/domain/shared/money"
	"campnest/internal/domain/sites"
)

var (
	ErrNoNights        = fault.BadRequest("pricing_no_nights", "stay must cover at least one night")
	ErrInvalidCurrency = fault.BadRequest("pricing_currency", "tariff currency must be defined")
)

// Breakdown is the pricing snapshot stored on a booking. Service fee and tax
// are finalized by a later lifecycle step and start at zero. All amounts are
// integer minor units.
type Breakdown struct {
	Currency      string
	Nights        int
	Subtotal      int64
	CleaningFee   int64
	PetFee        int64
	ExtraGuestFee int64
	ServiceFee    int64
	Tax           int64
	Total         int64
}

// Input feeds the pure calculation. WeekendNights counts nights billed at
// the tariff's weekend rate; it is ignored when the tariff has none.
type Input struct {
	Tariff        sites.Tariff
	Capacity      sites.Capacity
	Nights        int
	WeekendNights int
	Guests        int
	Pets          int
}

// Calculate computes the deterministic breakdown. It performs no I/O and has
// no clock: the same input always yields the same snapshot.
func Calculate(in Input) (Breakdown, error) {
	if in.Nights <= 0 {
		return Breakdown{}, ErrNoNights
	}
	if len(in.Tariff.Currency) != 3 {
		return Breakdown{}, ErrInvalidCurrency
	}
	weekendNights := in.WeekendNights
	if in.Tariff.WeekendPrice <= 0 || weekendNights > in.Nights {
		weekendNights = 0
	}
	baseNights := in.Nights - weekendNights

	b := Breakdown{
		Currency:    in.Tariff.Currency,
		Nights:      in.Nights,
		Subtotal:    in.Tariff.BasePrice*int64(baseNights) + in.Tariff.WeekendPrice*int64(weekendNights),
		CleaningFee: in.Tariff.CleaningFee,
	}
	if in.Pets > 0 {
		b.PetFee = in.Tariff.PetFee * int64(in.Pets)
	}
	if extra := in.Guests - in.Capacity.MaxGuests; extra > 0 {
		b.ExtraGuestFee = in.Tariff.ExtraGuestFee * int64(extra) * int64(in.Nights)
	}
	b.Total = b.Sum()
	return b, nil
}

// Sum recomputes the total from all components.
func (b Breakdown) Sum() int64 {
	return b.Subtotal + b.CleaningFee + b.PetFee + b.ExtraGuestFee + b.ServiceFee + b.Tax
}

// TotalMoney returns the total as a money value.
func (b Breakdown) TotalMoney() money.Money {
	return money.Money{Amount: b.Total, Currency: b.Currency}
}
