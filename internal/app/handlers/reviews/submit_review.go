package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/outbox"
	"campnest/internal/app/uow"
	domainbooking "campnest/internal/domain/booking"
	domainreviews "campnest/internal/domain/reviews"
	"campnest/internal/domain/shared/fault"
)

const submitReviewKey = "reviews.submit"

// ErrNotBookingGuest is returned when someone other than the guest tries to
// review the stay.
var ErrNotBookingGuest = fault.Forbidden("review_not_guest", "only the booking guest can review the stay")

type SubmitReviewCommand struct {
	AuthorID      string
	BookingID     string
	Location      int
	Communication int
	Value         int
	Cleanliness   int
	Accuracy      int
	Amenities     int
	Text          string
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

// SubmitReviewHandler accepts one review per completed booking and recounts
// both rating rollups in the same unit of work.
type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*dto.Review, error) {
	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	b, err := unit.Booking().ByID(execCtx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if b.GuestID != cmd.AuthorID {
		return nil, ErrNotBookingGuest
	}
	if existing, err := unit.Reviews().ByBooking(execCtx, b.ID); err == nil && existing != nil {
		return nil, domainreviews.ErrDuplicate
	} else if err != nil && !errors.Is(err, domainreviews.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         domainreviews.ReviewID(uuid.NewString()),
		BookingID:  b.ID,
		AuthorID:   cmd.AuthorID,
		SiteID:     b.SiteID,
		PropertyID: b.PropertyID,
		Property: domainreviews.PropertyRatings{
			Location:      cmd.Location,
			Communication: cmd.Communication,
			Value:         cmd.Value,
		},
		Site: domainreviews.SiteRatings{
			Cleanliness: cmd.Cleanliness,
			Accuracy:    cmd.Accuracy,
			Amenities:   cmd.Amenities,
		},
		Text: cmd.Text,
		Now:  now,
	})
	if err != nil {
		return nil, err
	}

	// MarkReviewed enforces the completed-stay and once-only rules; a second
	// submit for the same booking trips here even if the lookup above raced.
	if err := b.MarkReviewed(string(review.ID), now); err != nil {
		return nil, err
	}

	if err := unit.Reviews().Save(execCtx, review); err != nil {
		return nil, err
	}
	if err := unit.Booking().Save(execCtx, b); err != nil {
		return nil, err
	}
	if err := recomputeRatings(execCtx, unit, b.SiteID, b.PropertyID, now); err != nil {
		return nil, err
	}
	if err := outbox.Drain(execCtx, h.Outbox, nil, &review.EventRecorder); err != nil {
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
		h.Logger.Info("review submitted", "review_id", review.ID, "booking_id", b.ID, "site_id", b.SiteID)
	}
	view := dto.MapReview(review)
	return &view, nil
}

var _ commands.Handler[SubmitReviewCommand, *dto.Review] = (*SubmitReviewHandler)(nil)
