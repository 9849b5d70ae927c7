package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainsites "campnest/internal/domain/sites"
)

type SiteRepository struct {
	col *mongo.Collection
}

func NewSiteRepository(db *mongo.Database) *SiteRepository {
	return &SiteRepository{col: db.Collection("agg_site")}
}

func (r *SiteRepository) ByID(ctx context.Context, id domainsites.SiteID) (*domainsites.Site, error) {
	var doc siteDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainsites.ErrSiteNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *SiteRepository) Save(ctx context.Context, s *domainsites.Site) error {
	doc := newSiteDocument(s)
	filter := bson.M{"_id": doc.ID, "version": s.Version}
	doc.Version = s.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	s.Version = doc.Version
	return nil
}

func (r *SiteRepository) ListByProperty(ctx context.Context, propertyID domainsites.PropertyID) ([]*domainsites.Site, error) {
	cursor, err := r.col.Find(ctx, bson.M{"property_id": propertyID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainsites.Site
	for cursor.Next(ctx) {
		var doc siteDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type siteDocument struct {
	ID          string             `bson:"_id"`
	PropertyID  string             `bson:"property_id"`
	Host        string             `bson:"host_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Capacity    capacityDocument   `bson:"capacity"`
	Tariff      tariffDocument     `bson:"tariff"`
	MinNights   int                `bson:"min_nights"`
	MaxNights   int                `bson:"max_nights,omitempty"`
	InstantBook bool               `bson:"instant_book"`
	State       string             `bson:"state"`
	Rating      siteRatingDocument `bson:"rating"`
	Version     int64              `bson:"version"`
	CreatedAt   int64              `bson:"created_at"`
	UpdatedAt   int64              `bson:"updated_at"`
}

type capacityDocument struct {
	MaxGuests   int `bson:"max_guests"`
	MaxPets     int `bson:"max_pets"`
	MaxVehicles int `bson:"max_vehicles"`
}

type tariffDocument struct {
	Currency      string `bson:"currency"`
	BasePrice     int64  `bson:"base_price"`
	WeekendPrice  int64  `bson:"weekend_price,omitempty"`
	CleaningFee   int64  `bson:"cleaning_fee"`
	PetFee        int64  `bson:"pet_fee"`
	ExtraGuestFee int64  `bson:"extra_guest_fee"`
}

type siteRatingDocument struct {
	Cleanliness float64 `bson:"cleanliness"`
	Accuracy    float64 `bson:"accuracy"`
	Amenities   float64 `bson:"amenities"`
	Overall     float64 `bson:"overall"`
	Count       int     `bson:"count"`
}

func newSiteDocument(s *domainsites.Site) siteDocument {
	return siteDocument{
		ID:          string(s.ID),
		PropertyID:  string(s.PropertyID),
		Host:        string(s.Host),
		Name:        s.Name,
		Description: s.Description,
		Capacity:    capacityDocument{MaxGuests: s.Capacity.MaxGuests, MaxPets: s.Capacity.MaxPets, MaxVehicles: s.Capacity.MaxVehicles},
		Tariff: tariffDocument{
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
		Rating: siteRatingDocument{
			Cleanliness: s.Rating.Cleanliness,
			Accuracy:    s.Rating.Accuracy,
			Amenities:   s.Rating.Amenities,
			Overall:     s.Rating.Overall,
			Count:       s.Rating.Count,
		},
		Version:   s.Version,
		CreatedAt: s.CreatedAt.UnixMilli(),
		UpdatedAt: s.UpdatedAt.UnixMilli(),
	}
}

func (d siteDocument) toAggregate() *domainsites.Site {
	return &domainsites.Site{
		ID:          domainsites.SiteID(d.ID),
		PropertyID:  domainsites.PropertyID(d.PropertyID),
		Host:        domainsites.HostID(d.Host),
		Name:        d.Name,
		Description: d.Description,
		Capacity:    domainsites.Capacity{MaxGuests: d.Capacity.MaxGuests, MaxPets: d.Capacity.MaxPets, MaxVehicles: d.Capacity.MaxVehicles},
		Tariff: domainsites.Tariff{
			Currency:      d.Tariff.Currency,
			BasePrice:     d.Tariff.BasePrice,
			WeekendPrice:  d.Tariff.WeekendPrice,
			CleaningFee:   d.Tariff.CleaningFee,
			PetFee:        d.Tariff.PetFee,
			ExtraGuestFee: d.Tariff.ExtraGuestFee,
		},
		MinNights:   d.MinNights,
		MaxNights:   d.MaxNights,
		InstantBook: d.InstantBook,
		State:       domainsites.SiteState(d.State),
		Rating: domainsites.SiteRating{
			Cleanliness: d.Rating.Cleanliness,
			Accuracy:    d.Rating.Accuracy,
			Amenities:   d.Rating.Amenities,
			Overall:     d.Rating.Overall,
			Count:       d.Rating.Count,
		},
		Version:   d.Version,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
