package sites

import (
	"context"
	"strings"
	"time"

	"campnest/internal/domain/shared/events"
	"campnest/internal/domain/shared/fault"
)

type PropertyID string

// PropertyRating is the property-level aggregate over published reviews.
// The zero value is the defined "no qualifying reviews" state.
type PropertyRating struct {
	Location      float64
	Communication float64
	Value         float64
	Overall       float64
	Count         int
}

// Property groups sites under one host. Guests browse properties; bookings
// always target a concrete site.
type Property struct {
	ID          PropertyID
	Host        HostID
	Name        string
	Description string
	Region      string
	Country     string
	Rating      PropertyRating
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type PropertyRepository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, property *Property) error
	ListByHost(ctx context.Context, host HostID) ([]*Property, error)
}

var ErrPropertyNotFound = fault.NotFound("property_not_found", "property does not exist")

type CreatePropertyParams struct {
	ID          PropertyID
	Host        HostID
	Name        string
	Description string
	Region      string
	Country     string
	Now         time.Time
}

func NewProperty(params CreatePropertyParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, fault.BadRequest("property_id_required", "property id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, fault.BadRequest("property_host_required", "property host is required")
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, fault.BadRequest("property_name_required", "property name is required")
	}
	now := params.Now.UTC()
	p := &Property{
		ID:          params.ID,
		Host:        params.Host,
		Name:        strings.TrimSpace(params.Name),
		Description: strings.TrimSpace(params.Description),
		Region:      strings.TrimSpace(params.Region),
		Country:     strings.TrimSpace(params.Country),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.Record(PropertyCreated{PropertyID: p.ID, HostID: p.Host, At: now})
	return p, nil
}

// SetRating replaces the property-level rollup. Passing the zero value resets
// the aggregate when no published reviews remain.
func (p *Property) SetRating(rating PropertyRating, now time.Time) {
	p.Rating = rating
	p.UpdatedAt = now.UTC()
}
