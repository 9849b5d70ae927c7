package policies

import "context"

// CheckoutRequest asks the payment provider for a hosted checkout session.
// OrderRef is the booking's human-readable code; the provider echoes it back
// in webhook callbacks.
type CheckoutRequest struct {
	OrderRef  string
	Amount    int64
	Currency  string
	ReturnURL string
	CancelURL string
}

// CheckoutSession is the provider's answer.
type CheckoutSession struct {
	CheckoutURL string
}

// PaymentsPort creates checkout sessions. The booking engine treats it as
// advisory: a failed call is logged and the reservation stands.
type PaymentsPort interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
}
