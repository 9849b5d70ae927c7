package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainsites "campnest/internal/domain/sites"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("agg_property")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainsites.PropertyID) (*domainsites.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainsites.ErrPropertyNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainsites.Property) error {
	doc := newPropertyDocument(p)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *PropertyRepository) ListByHost(ctx context.Context, host domainsites.HostID) ([]*domainsites.Property, error) {
	cursor, err := r.col.Find(ctx, bson.M{"host_id": host}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainsites.Property
	for cursor.Next(ctx) {
		var doc propertyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type propertyDocument struct {
	ID          string                 `bson:"_id"`
	Host        string                 `bson:"host_id"`
	Name        string                 `bson:"name"`
	Description string                 `bson:"description,omitempty"`
	Region      string                 `bson:"region,omitempty"`
	Country     string                 `bson:"country,omitempty"`
	Rating      propertyRatingDocument `bson:"rating"`
	CreatedAt   int64                  `bson:"created_at"`
	UpdatedAt   int64                  `bson:"updated_at"`
}

type propertyRatingDocument struct {
	Location      float64 `bson:"location"`
	Communication float64 `bson:"communication"`
	Value         float64 `bson:"value"`
	Overall       float64 `bson:"overall"`
	Count         int     `bson:"count"`
}

func newPropertyDocument(p *domainsites.Property) propertyDocument {
	return propertyDocument{
		ID:          string(p.ID),
		Host:        string(p.Host),
		Name:        p.Name,
		Description: p.Description,
		Region:      p.Region,
		Country:     p.Country,
		Rating: propertyRatingDocument{
			Location:      p.Rating.Location,
			Communication: p.Rating.Communication,
			Value:         p.Rating.Value,
			Overall:       p.Rating.Overall,
			Count:         p.Rating.Count,
		},
		CreatedAt: p.CreatedAt.UnixMilli(),
		UpdatedAt: p.UpdatedAt.UnixMilli(),
	}
}

func (d propertyDocument) toAggregate() *domainsites.Property {
	return &domainsites.Property{
		ID:          domainsites.PropertyID(d.ID),
		Host:        domainsites.HostID(d.Host),
		Name:        d.Name,
		Description: d.Description,
		Region:      d.Region,
		Country:     d.Country,
		Rating: domainsites.PropertyRating{
			Location:      d.Rating.Location,
			Communication: d.Rating.Communication,
			Value:         d.Rating.Value,
			Overall:       d.Rating.Overall,
			Count:         d.Rating.Count,
		},
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
