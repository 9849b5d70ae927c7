package reviews

import (
	"context"
	"log/slog"
	"time"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/outbox"
	"campnest/internal/app/uow"
	domainreviews "campnest/internal/domain/reviews"
)

const (
	publishReviewKey   = "reviews.publish"
	unpublishReviewKey = "reviews.unpublish"
)

// PublishReviewCommand restores a moderated review; its ratings count toward
// the rollups again.
type PublishReviewCommand struct {
	ReviewID string
}

func (c PublishReviewCommand) Key() string { return publishReviewKey }

// UnpublishReviewCommand pulls a review from public listings and out of the
// rating rollups.
type UnpublishReviewCommand struct {
	ReviewID string
}

func (c UnpublishReviewCommand) Key() string { return unpublishReviewKey }

// ModerateReviewHandler handles both publish and unpublish; each recounts
// the rollups since the published set changed.
type ModerateReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *ModerateReviewHandler) HandlePublish(ctx context.Context, cmd PublishReviewCommand) (*dto.Review, error) {
	return h.moderate(ctx, cmd.ReviewID, true)
}

func (h *ModerateReviewHandler) HandleUnpublish(ctx context.Context, cmd UnpublishReviewCommand) (*dto.Review, error) {
	return h.moderate(ctx, cmd.ReviewID, false)
}

func (h *ModerateReviewHandler) moderate(ctx context.Context, reviewID string, publish bool) (*dto.Review, error) {
	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	review, err := unit.Reviews().ByID(execCtx, domainreviews.ReviewID(reviewID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	changed := review.Published != publish
	if publish {
		review.Publish(now)
	} else {
		review.Unpublish(now)
	}

	if changed {
		if err := unit.Reviews().Save(execCtx, review); err != nil {
			return nil, err
		}
		if err := recomputeRatings(execCtx, unit, review.SiteID, review.PropertyID, now); err != nil {
			return nil, err
		}
		if err := outbox.Drain(execCtx, h.Outbox, nil, &review.EventRecorder); err != nil {
			return nil, err
		}
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}

	if h.Logger != nil && changed {
		h.Logger.Info("review moderated", "review_id", review.ID, "published", publish)
	}
	view := dto.MapReview(review)
	return &view, nil
}

type PublishReviewHandler struct{ *ModerateReviewHandler }

func (h PublishReviewHandler) Handle(ctx context.Context, cmd PublishReviewCommand) (*dto.Review, error) {
	return h.HandlePublish(ctx, cmd)
}

type UnpublishReviewHandler struct{ *ModerateReviewHandler }

func (h UnpublishReviewHandler) Handle(ctx context.Context, cmd UnpublishReviewCommand) (*dto.Review, error) {
	return h.HandleUnpublish(ctx, cmd)
}

var (
	_ commands.Handler[PublishReviewCommand, *dto.Review]   = PublishReviewHandler{}
	_ commands.Handler[UnpublishReviewCommand, *dto.Review] = UnpublishReviewHandler{}
)
