package booking

import "time"

// Default three-tier schedule: a week out cancels free, down to a day out
// refunds half, later than that refunds nothing.
const (
	defaultFullRefundDays = 7
	defaultHalfRefundDays = 1
	halfRefundPercent     = 50
)

// CancellationSchedule is snapshotted onto the booking at creation so host
// policy edits never change the terms of an existing reservation.
type CancellationSchedule struct {
	FullRefundDays int
	HalfRefundDays int
}

// DefaultSchedule returns the fixed three-tier schedule.
func DefaultSchedule() CancellationSchedule {
	return CancellationSchedule{
		FullRefundDays: defaultFullRefundDays,
		HalfRefundDays: defaultHalfRefundDays,
	}
}

// Split divides the total into refund and penalty based on how far ahead of
// check-in the cancellation lands.
func (s CancellationSchedule) Split(total int64, cancelAt, checkIn time.Time) (refund, penalty int64) {
	if total <= 0 {
		return 0, 0
	}
	lead := checkIn.Sub(cancelAt)
	switch {
	case lead >= time.Duration(s.fullDays())*24*time.Hour:
		return total, 0
	case lead >= time.Duration(s.halfDays())*24*time.Hour:
		refund = total * halfRefundPercent / 100
		return refund, total - refund
	default:
		return 0, total
	}
}

func (s CancellationSchedule) fullDays() int {
	if s.FullRefundDays > 0 {
		return s.FullRefundDays
	}
	return defaultFullRefundDays
}

func (s CancellationSchedule) halfDays() int {
	if s.HalfRefundDays > 0 {
		return s.HalfRefundDays
	}
	return defaultHalfRefundDays
}
