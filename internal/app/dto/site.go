package dto

import (
	"time"

	domainsites "campnest/internal/domain/sites"
)

type Tariff struct {
	Currency      string `json:"currency"`
	BasePrice     int64  `json:"base_price"`
	WeekendPrice  int64  `json:"weekend_price,omitempty"`
	CleaningFee   int64  `json:"cleaning_fee"`
	PetFee        int64  `json:"pet_fee"`
	ExtraGuestFee int64  `json:"extra_guest_fee"`
}

type Capacity struct {
	MaxGuests   int `json:"max_guests"`
	MaxPets     int `json:"max_pets"`
	MaxVehicles int `json:"max_vehicles"`
}

type Site struct {
	ID          string     `json:"id"`
	PropertyID  string     `json:"property_id"`
	HostID      string     `json:"host_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Capacity    Capacity   `json:"capacity"`
	Tariff      Tariff     `json:"tariff"`
	MinNights   int        `json:"min_nights"`
	MaxNights   int        `json:"max_nights,omitempty"`
	InstantBook bool       `json:"instant_book"`
	State       string     `json:"state"`
	Rating      SiteRating `json:"rating"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SiteCollection struct {
	Items []Site `json:"items"`
}

type Property struct {
	ID          string         `json:"id"`
	HostID      string         `json:"host_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Region      string         `json:"region,omitempty"`
	Country     string         `json:"country,omitempty"`
	Rating      PropertyRating `json:"rating"`
	CreatedAt   time.Time      `json:"created_at"`
}

func MapSite(s *domainsites.Site) Site {
	return Site{
		ID:          string(s.ID),
		PropertyID:  string(s.PropertyID),
		HostID:      string(s.Host),
		Name:        s.Name,
		Description: s.Description,
		Capacity: Capacity{
			MaxGuests:   s.Capacity.MaxGuests,
			MaxPets:     s.Capacity.MaxPets,
			MaxVehicles: s.Capacity.MaxVehicles,
		},
		Tariff: Tariff{
			Currency:      s.Tariff.Currency,
			BasePrice:     s.Tariff.BasePrice,
			WeekendPrice:  s.Tariff.WeekendPrice,
			CleaningFee:   s.Tariff.CleaningFee,
			PetFee:        s.Tariff.PetFee,
			ExtraGuestFee: s.Tariff.ExtraGuestFee,
		},
		MinNights:   s.MinNights,
		MaxNights:   s.MaxNights,
		InstantBook: s.InstantBook,
		State:       string(s.State),
		Rating:      MapSiteRating(s.Rating),
		CreatedAt:   s.CreatedAt,
	}
}

func MapProperty(p *domainsites.Property) Property {
	return Property{
		ID:          string(p.ID),
		HostID:      string(p.Host),
		Name:        p.Name,
		Description: p.Description,
		Region:      p.Region,
		Country:     p.Country,
		Rating:      MapPropertyRating(p.Rating),
		CreatedAt:   p.CreatedAt,
	}
}
