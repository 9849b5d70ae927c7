package daterange

import (
	"errors"
	"time"
)

var (
	ErrEmptyRange    = errors.New("daterange: check-out must be after check-in")
	ErrZeroDate      = errors.New("daterange: check-in and check-out are required")
	ErrCheckInInPast = errors.New("daterange: check-in date is in the past")
)

const millisPerDay = int64(24 * time.Hour / time.Millisecond)

// DateRange is a half-open stay interval [CheckIn, CheckOut): the guest
// vacates on the check-out morning, so that date itself is never occupied.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New validates and normalizes a range to UTC midnight boundaries.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return DateRange{}, ErrZeroDate
	}
	in := Truncate(checkIn)
	out := Truncate(checkOut)
	if !out.After(in) {
		return DateRange{}, ErrEmptyRange
	}
	return DateRange{CheckIn: in, CheckOut: out}, nil
}

// Truncate drops the time-of-day component, keeping the UTC calendar date.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights returns the stay length as ceil of the millisecond span over a day.
func (r DateRange) Nights() int {
	span := r.CheckOut.UnixMilli() - r.CheckIn.UnixMilli()
	if span <= 0 {
		return 0
	}
	nights := span / millisPerDay
	if span%millisPerDay != 0 {
		nights++
	}
	return int(nights)
}

// Dates lists every occupied calendar date, check-out exclusive.
func (r DateRange) Dates() []time.Time {
	dates := make([]time.Time, 0, r.Nights())
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Overlaps reports whether two half-open ranges share at least one night.
// Back-to-back stays where one check-out equals the other check-in do not
// overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

// Contains reports whether the given date falls inside the range.
func (r DateRange) Contains(date time.Time) bool {
	d := Truncate(date)
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

// ValidateNotPast rejects ranges whose check-in is before today.
func ValidateNotPast(r DateRange, now time.Time) error {
	today := Truncate(now)
	if r.CheckIn.Before(today) {
		return ErrCheckInInPast
	}
	return nil
}
