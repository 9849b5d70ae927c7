package middleware

import (
	"context"
	"log/slog"
	"time"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	"campnest/internal/app/policies"
	"campnest/internal/app/uow"
	domainbooking "campnest/internal/domain/booking"
)

const checkoutCallTimeout = 5 * time.Second

// CheckoutLink asks the payment provider for a hosted checkout session after
// the surrounding transaction has committed, so provider latency never sits
// inside the reservation's write window. The reservation is authoritative: a
// failed call only logs and leaves the URL empty for a later retry.
func CheckoutLink(provider policies.PaymentsPort, factory uow.UoWFactory, logger *slog.Logger) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil || provider == nil {
				return res, err
			}
			view, ok := res.(*dto.Booking)
			if !ok || !needsCheckoutLink(view) {
				return res, nil
			}
			url, linkErr := requestCheckoutSession(ctx, provider, view)
			if linkErr != nil {
				if logger != nil {
					logger.Warn("checkout link request failed", "booking_id", view.ID, "code", view.Code, "error", linkErr)
				}
				return res, nil
			}
			if saveErr := persistCheckoutURL(ctx, factory, view.ID, url); saveErr != nil {
				if logger != nil {
					logger.Warn("checkout link not persisted", "booking_id", view.ID, "error", saveErr)
				}
				return res, nil
			}
			view.CheckoutURL = url
			return res, nil
		})
	}
}

// needsCheckoutLink selects live, unpaid, priced bookings without a link.
// That covers the initial request and a confirm-time retry after an earlier
// provider outage.
func needsCheckoutLink(view *dto.Booking) bool {
	if view == nil || view.CheckoutURL != "" || view.Price.Total <= 0 {
		return false
	}
	if view.PaymentStatus != string(domainbooking.PaymentUnpaid) {
		return false
	}
	switch view.Status {
	case string(domainbooking.StatusPending), string(domainbooking.StatusConfirmed):
		return true
	}
	return false
}

func requestCheckoutSession(ctx context.Context, provider policies.PaymentsPort, view *dto.Booking) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, checkoutCallTimeout)
	defer cancel()
	session, err := provider.CreateCheckout(callCtx, policies.CheckoutRequest{
		OrderRef: view.Code,
		Amount:   view.Price.Total,
		Currency: view.Price.Currency,
	})
	if err != nil {
		return "", err
	}
	return session.CheckoutURL, nil
}

// persistCheckoutURL stores the link in its own short unit of work; the
// reservation transaction is already closed by the time this runs.
func persistCheckoutURL(ctx context.Context, factory uow.UoWFactory, bookingID, url string) error {
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()

	b, err := unit.Booking().ByID(execCtx, domainbooking.BookingID(bookingID))
	if err != nil {
		return err
	}
	b.SetCheckoutURL(url)
	if err := unit.Booking().Save(execCtx, b); err != nil {
		return err
	}
	if err := unit.Commit(execCtx); err != nil {
		return err
	}
	committed = true
	return nil
}
