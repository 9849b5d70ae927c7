package payments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"campnest/internal/app/commands"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/outbox"
	"campnest/internal/app/uow"
	domainbooking "campnest/internal/domain/booking"
	"campnest/internal/domain/shared/fault"
)

const applyCallbackKey = "payments.apply_callback"

// Reconciliation outcomes. The webhook endpoint acknowledges all three with
// success: a retrying provider must never see an error for a replay or a
// reference we do not know.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeUnknown   = "unknown_reference"
)

var ErrUnknownProviderStatus = fault.BadRequest("payment_unknown_status", "unrecognized payment provider status")

// ApplyPaymentCallbackCommand carries a provider callback. Code is the
// booking code we handed the provider as order reference.
type ApplyPaymentCallbackCommand struct {
	Code   string
	Status string
}

func (c ApplyPaymentCallbackCommand) Key() string { return applyCallbackKey }

type CallbackResult struct {
	Outcome string `json:"outcome"`
	Code    string `json:"code"`
}

// ApplyPaymentCallbackHandler reconciles a provider callback against the
// booking it references. Payment status is the only thing it writes; the
// booking lifecycle stays with hosts, guests and instant-book.
type ApplyPaymentCallbackHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *ApplyPaymentCallbackHandler) Handle(ctx context.Context, cmd ApplyPaymentCallbackCommand) (*CallbackResult, error) {
	status, err := mapProviderStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	b, err := unit.Booking().ByCode(execCtx, strings.TrimSpace(cmd.Code))
	if err != nil {
		if errors.Is(err, domainbooking.ErrBookingNotFound) {
			// Stale or foreign reference. Acknowledge so the provider
			// stops retrying, but leave a trace.
			if h.Logger != nil {
				h.Logger.Warn("payment callback for unknown booking", "code", cmd.Code, "status", cmd.Status)
			}
			return &CallbackResult{Outcome: OutcomeUnknown, Code: cmd.Code}, nil
		}
		return nil, err
	}

	if !b.ApplyPayment(status, time.Now().UTC()) {
		return &CallbackResult{Outcome: OutcomeDuplicate, Code: b.Code}, nil
	}
	if err := unit.Booking().Save(execCtx, b); err != nil {
		return nil, err
	}
	if err := outbox.Drain(execCtx, h.Outbox, nil, &b.EventRecorder); err != nil {
		return nil, err
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}

	if h.Logger != nil {
		h.Logger.Info("payment status applied", "code", b.Code, "payment_status", status)
	}
	return &CallbackResult{Outcome: OutcomeApplied, Code: b.Code}, nil
}

func mapProviderStatus(raw string) (domainbooking.PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "settled", "succeeded":
		return domainbooking.PaymentPaid, nil
	case "failed", "expired":
		return domainbooking.PaymentFailed, nil
	default:
		return "", ErrUnknownProviderStatus
	}
}

var _ commands.Handler[ApplyPaymentCallbackCommand, *CallbackResult] = (*ApplyPaymentCallbackHandler)(nil)
