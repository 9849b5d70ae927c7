package reviews

import (
	"context"

	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/queries"
	"campnest/internal/app/uow"
	domainsites "campnest/internal/domain/sites"
)

const siteReviewsKey = "reviews.list_by_site"

// SiteReviewsQuery lists the published reviews of one site, newest first in
// whatever order the repository returns.
type SiteReviewsQuery struct {
	SiteID string
}

func (q SiteReviewsQuery) Key() string { return siteReviewsKey }

type SiteReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SiteReviewsHandler) Handle(ctx context.Context, query SiteReviewsQuery) (*dto.ReviewCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	list, err := unit.Reviews().ListPublishedBySite(execCtx, domainsites.SiteID(query.SiteID))
	if err != nil {
		return nil, err
	}
	items := make([]dto.Review, 0, len(list))
	for _, r := range list {
		items = append(items, dto.MapReview(r))
	}
	return &dto.ReviewCollection{Items: items}, nil
}

var _ queries.Handler[SiteReviewsQuery, *dto.ReviewCollection] = (*SiteReviewsHandler)(nil)
