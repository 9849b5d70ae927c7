package reviews

import (
	"context"
	"strings"
	"time"

	"campnest/internal/domain/booking"
	"campnest/internal/domain/shared/events"
	"campnest/internal/domain/shared/fault"
	"campnest/internal/domain/sites"
)

var (
	ErrInvalidRating = fault.BadRequest("review_rating_range", "ratings must be between 1 and 5")
	ErrNotFound      = fault.NotFound("review_not_found", "review does not exist")
	ErrDuplicate     = fault.Conflict("review_duplicate", "booking already has a review")
)

type ReviewID string

// PropertyRatings is the first triad; it rolls up into the parent property.
type PropertyRatings struct {
	Location      int
	Communication int
	Value         int
}

// SiteRatings is the second triad; it rolls up into the booked site.
type SiteRatings struct {
	Cleanliness int
	Accuracy    int
	Amenities   int
}

// Review is one-to-one with a completed booking.
type Review struct {
	ID         ReviewID
	BookingID  booking.BookingID
	AuthorID   string
	SiteID     sites.SiteID
	PropertyID sites.PropertyID
	Property   PropertyRatings
	Site       SiteRatings
	Text       string
	Published  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	ByBooking(ctx context.Context, bookingID booking.BookingID) (*Review, error)
	// ListPublishedBySite returns every published review for the site; the
	// rating rollup recounts over the full list.
	ListPublishedBySite(ctx context.Context, siteID sites.SiteID) ([]*Review, error)
	ListPublishedByProperty(ctx context.Context, propertyID sites.PropertyID) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID         ReviewID
	BookingID  booking.BookingID
	AuthorID   string
	SiteID     sites.SiteID
	PropertyID sites.PropertyID
	Property   PropertyRatings
	Site       SiteRatings
	Text       string
	Now        time.Time
}

// Submit builds a published review. Guests review immediately; moderation
// may unpublish later.
func Submit(params SubmitParams) (*Review, error) {
	for _, r := range []int{
		params.Property.Location, params.Property.Communication, params.Property.Value,
		params.Site.Cleanliness, params.Site.Accuracy, params.Site.Amenities,
	} {
		if r < 1 || r > 5 {
			return nil, ErrInvalidRating
		}
	}
	now := params.Now.UTC()
	review := &Review{
		ID:         params.ID,
		BookingID:  params.BookingID,
		AuthorID:   params.AuthorID,
		SiteID:     params.SiteID,
		PropertyID: params.PropertyID,
		Property:   params.Property,
		Site:       params.Site,
		Text:       strings.TrimSpace(params.Text),
		Published:  true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	review.Record(ReviewSubmitted{ReviewID: review.ID, BookingID: review.BookingID, SiteID: review.SiteID, At: now})
	return review, nil
}

// Publish makes the review count toward rollups again.
func (r *Review) Publish(now time.Time) {
	if r.Published {
		return
	}
	r.Published = true
	r.UpdatedAt = now.UTC()
	r.Record(ReviewPublished{ReviewID: r.ID, SiteID: r.SiteID, At: r.UpdatedAt})
}

// Unpublish hides the review from rollups without deleting it.
func (r *Review) Unpublish(now time.Time) {
	if !r.Published {
		return
	}
	r.Published = false
	r.UpdatedAt = now.UTC()
	r.Record(ReviewUnpublished{ReviewID: r.ID, SiteID: r.SiteID, At: r.UpdatedAt})
}

type ReviewSubmitted struct {
	ReviewID  ReviewID
	BookingID booking.BookingID
	SiteID    sites.SiteID
	At        time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }

type ReviewPublished struct {
	ReviewID ReviewID
	SiteID   sites.SiteID
	At       time.Time
}

func (e ReviewPublished) EventName() string     { return "review.published" }
func (e ReviewPublished) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewPublished) OccurredAt() time.Time { return e.At }

type ReviewUnpublished struct {
	ReviewID ReviewID
	SiteID   sites.SiteID
	At       time.Time
}

func (e ReviewUnpublished) EventName() string     { return "review.unpublished" }
func (e ReviewUnpublished) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewUnpublished) OccurredAt() time.Time { return e.At }
