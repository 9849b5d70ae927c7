package reviews

import (
	"context"
	"time"

	"campnest/internal/app/uow"
	domainreviews "campnest/internal/domain/reviews"
	domainsites "campnest/internal/domain/sites"
)

// recomputeRatings recounts both rating aggregates from scratch off the
// published review set and stores them. Full recount keeps the aggregates
// self-healing: one pass fixes any drift from missed updates.
func recomputeRatings(ctx context.Context, unit uow.UnitOfWork, siteID domainsites.SiteID, propertyID domainsites.PropertyID, now time.Time) error {
	siteReviews, err := unit.Reviews().ListPublishedBySite(ctx, siteID)
	if err != nil {
		return err
	}
	site, err := unit.Sites().ByID(ctx, siteID)
	if err != nil {
		return err
	}
	site.SetRating(domainreviews.RollupSite(siteReviews), now)
	if err := unit.Sites().Save(ctx, site); err != nil {
		return err
	}

	propertyReviews, err := unit.Reviews().ListPublishedByProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	property, err := unit.Properties().ByID(ctx, propertyID)
	if err != nil {
		return err
	}
	property.SetRating(domainreviews.RollupProperty(propertyReviews), now)
	return unit.Properties().Save(ctx, property)
}
