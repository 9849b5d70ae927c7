package sites

import (
	"context"
	"strings"
	"time"

	"campnest/internal/domain/shared/events"
	"campnest/internal/domain/shared/fault"
)

type SiteID string
type HostID string

type SiteState string

const (
	SiteDraft     SiteState = "DRAFT"
	SiteActive    SiteState = "ACTIVE"
	SiteSuspended SiteState = "SUSPENDED"
)

var (
	ErrSiteNotFound   = fault.NotFound("site_not_found", "site does not exist")
	ErrSiteInactive   = fault.BadRequest("site_inactive", "site is not accepting bookings")
	ErrGuestsLimit    = fault.BadRequest("site_guests_limit", "max guests must be at least 1")
	ErrNightsRange    = fault.BadRequest("site_nights_range", "min nights must be <= max nights")
	ErrNegativeTariff = fault.BadRequest("site_tariff_negative", "tariff components must be non-negative")
	ErrNameRequired   = fault.BadRequest("site_name_required", "site name is required")
	ErrInvalidState   = fault.BadRequest("site_invalid_state", "invalid site state transition")
)

// Capacity limits are fully specified at creation time; zero means "none
// allowed", never "unknown".
type Capacity struct {
	MaxGuests   int
	MaxPets     int
	MaxVehicles int
}

// AllowsPets reports whether any pets may stay on the site.
func (c Capacity) AllowsPets() bool { return c.MaxPets > 0 }

// Tariff holds per-site prices in integer minor units. WeekendPrice of zero
// means the base rate applies to every night.
type Tariff struct {
	Currency      string
	BasePrice     int64
	WeekendPrice  int64
	CleaningFee   int64
	PetFee        int64
	ExtraGuestFee int64
}

func (t Tariff) validate() error {
	if len(t.Currency) != 3 {
		return fault.BadRequest("site_currency", "tariff currency must be a 3-letter code")
	}
	if t.BasePrice < 0 || t.WeekendPrice < 0 || t.CleaningFee < 0 || t.PetFee < 0 || t.ExtraGuestFee < 0 {
		return ErrNegativeTariff
	}
	return nil
}

// Site is the bookable unit nested under a property.
type Site struct {
	ID          SiteID
	PropertyID  PropertyID
	Host        HostID
	Name        string
	Description string
	Capacity    Capacity
	Tariff      Tariff
	MinNights   int
	MaxNights   int // 0 = unlimited
	InstantBook bool
	State       SiteState
	Rating      SiteRating
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type SiteRepository interface {
	ByID(ctx context.Context, id SiteID) (*Site, error)
	Save(ctx context.Context, site *Site) error
	ListByProperty(ctx context.Context, propertyID PropertyID) ([]*Site, error)
}

type CreateSiteParams struct {
	ID          SiteID
	PropertyID  PropertyID
	Host        HostID
	Name        string
	Description string
	Capacity    Capacity
	Tariff      Tariff
	MinNights   int
	MaxNights   int
	InstantBook bool
	Now         time.Time
}

func NewSite(params CreateSiteParams) (*Site, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, fault.BadRequest("site_id_required", "site id is required")
	}
	if strings.TrimSpace(string(params.PropertyID)) == "" {
		return nil, fault.BadRequest("site_property_required", "site property is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, fault.BadRequest("site_host_required", "site host is required")
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if params.Capacity.MaxGuests < 1 {
		return nil, ErrGuestsLimit
	}
	if params.Capacity.MaxPets < 0 || params.Capacity.MaxVehicles < 0 {
		return nil, fault.BadRequest("site_capacity_negative", "capacity limits must be non-negative")
	}
	if err := params.Tariff.validate(); err != nil {
		return nil, err
	}
	minNights := params.MinNights
	if minNights < 1 {
		minNights = 1
	}
	if params.MaxNights > 0 && minNights > params.MaxNights {
		return nil, ErrNightsRange
	}
	now := params.Now.UTC()
	s := &Site{
		ID:          params.ID,
		PropertyID:  params.PropertyID,
		Host:        params.Host,
		Name:        strings.TrimSpace(params.Name),
		Description: strings.TrimSpace(params.Description),
		Capacity:    params.Capacity,
		Tariff:      params.Tariff,
		MinNights:   minNights,
		MaxNights:   params.MaxNights,
		InstantBook: params.InstantBook,
		State:       SiteDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Record(SiteCreated{SiteID: s.ID, PropertyID: s.PropertyID, HostID: s.Host, At: now})
	return s, nil
}

func (s *Site) Activate(now time.Time) error {
	if s.State == SiteActive {
		return nil
	}
	if s.Capacity.MaxGuests < 1 {
		return ErrGuestsLimit
	}
	s.State = SiteActive
	s.UpdatedAt = now.UTC()
	s.Record(SiteActivated{SiteID: s.ID, At: s.UpdatedAt})
	return nil
}

func (s *Site) Suspend(reason string, now time.Time) error {
	if s.State != SiteActive {
		return ErrInvalidState
	}
	s.State = SiteSuspended
	s.UpdatedAt = now.UTC()
	s.Record(SiteDeactivated{SiteID: s.ID, Reason: reason, At: s.UpdatedAt})
	return nil
}

// UpdateTariff changes prices for future bookings only; existing bookings
// keep their stored pricing snapshot.
func (s *Site) UpdateTariff(tariff Tariff, now time.Time) error {
	if err := tariff.validate(); err != nil {
		return err
	}
	s.Tariff = tariff
	s.UpdatedAt = now.UTC()
	s.Record(SiteUpdated{SiteID: s.ID, At: s.UpdatedAt})
	return nil
}

// UpdateCapacity changes limits for future bookings only.
func (s *Site) UpdateCapacity(capacity Capacity, now time.Time) error {
	if capacity.MaxGuests < 1 {
		return ErrGuestsLimit
	}
	if capacity.MaxPets < 0 || capacity.MaxVehicles < 0 {
		return fault.BadRequest("site_capacity_negative", "capacity limits must be non-negative")
	}
	s.Capacity = capacity
	s.UpdatedAt = now.UTC()
	s.Record(SiteUpdated{SiteID: s.ID, At: s.UpdatedAt})
	return nil
}

// SiteRating is the site-level aggregate over published reviews. The zero
// value is the defined "no qualifying reviews" state.
type SiteRating struct {
	Cleanliness float64
	Accuracy    float64
	Amenities   float64
	Overall     float64
	Count       int
}

// SetRating replaces the site-level rollup.
func (s *Site) SetRating(rating SiteRating, now time.Time) {
	s.Rating = rating
	s.UpdatedAt = now.UTC()
}
