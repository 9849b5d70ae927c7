package dto

import (
	"time"

	domainreviews "campnest/internal/domain/reviews"
	domainsites "campnest/internal/domain/sites"
)

type Review struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	AuthorID      string    `json:"author_id"`
	SiteID        string    `json:"site_id"`
	PropertyID    string    `json:"property_id"`
	Location      int       `json:"location"`
	Communication int       `json:"communication"`
	Value         int       `json:"value"`
	Cleanliness   int       `json:"cleanliness"`
	Accuracy      int       `json:"accuracy"`
	Amenities     int       `json:"amenities"`
	Text          string    `json:"text,omitempty"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReviewCollection struct {
	Items []Review `json:"items"`
}

func MapReview(r *domainreviews.Review) Review {
	return Review{
		ID:            string(r.ID),
		BookingID:     string(r.BookingID),
		AuthorID:      r.AuthorID,
		SiteID:        string(r.SiteID),
		PropertyID:    string(r.PropertyID),
		Location:      r.Property.Location,
		Communication: r.Property.Communication,
		Value:         r.Property.Value,
		Cleanliness:   r.Site.Cleanliness,
		Accuracy:      r.Site.Accuracy,
		Amenities:     r.Site.Amenities,
		Text:          r.Text,
		Published:     r.Published,
		CreatedAt:     r.CreatedAt,
	}
}

type PropertyRating struct {
	Location      float64 `json:"location"`
	Communication float64 `json:"communication"`
	Value         float64 `json:"value"`
	Overall       float64 `json:"overall"`
	Count         int     `json:"count"`
}

type SiteRating struct {
	Cleanliness float64 `json:"cleanliness"`
	Accuracy    float64 `json:"accuracy"`
	Amenities   float64 `json:"amenities"`
	Overall     float64 `json:"overall"`
	Count       int     `json:"count"`
}

func MapPropertyRating(r domainsites.PropertyRating) PropertyRating {
	return PropertyRating{
		Location:      r.Location,
		Communication: r.Communication,
		Value:         r.Value,
		Overall:       r.Overall,
		Count:         r.Count,
	}
}

func MapSiteRating(r domainsites.SiteRating) SiteRating {
	return SiteRating{
		Cleanliness: r.Cleanliness,
		Accuracy:    r.Accuracy,
		Amenities:   r.Amenities,
		Overall:     r.Overall,
		Count:       r.Count,
	}
}
