package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "campnest/internal/domain/booking"
	domainreviews "campnest/internal/domain/reviews"
	domainsites "campnest/internal/domain/sites"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("agg_review")}
}

// EnsureIndexes creates the one-review-per-booking guard.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "booking_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_booking"),
	})
	return err
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	return r.findOne(ctx, bson.M{"booking_id": bookingID})
}

func (r *ReviewRepository) findOne(ctx context.Context, filter bson.M) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListPublishedBySite(ctx context.Context, siteID domainsites.SiteID) ([]*domainreviews.Review, error) {
	return r.find(ctx, bson.M{"site_id": siteID, "published": true})
}

func (r *ReviewRepository) ListPublishedByProperty(ctx context.Context, propertyID domainsites.PropertyID) ([]*domainreviews.Review, error) {
	return r.find(ctx, bson.M{"property_id": propertyID, "published": true})
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]*domainreviews.Review, error) {
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainreviews.Review
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return domainreviews.ErrDuplicate
	}
	return err
}

type reviewDocument struct {
	ID            string `bson:"_id"`
	BookingID     string `bson:"booking_id"`
	AuthorID      string `bson:"author_id"`
	SiteID        string `bson:"site_id"`
	PropertyID    string `bson:"property_id"`
	Location      int    `bson:"location"`
	Communication int    `bson:"communication"`
	Value         int    `bson:"value"`
	Cleanliness   int    `bson:"cleanliness"`
	Accuracy      int    `bson:"accuracy"`
	Amenities     int    `bson:"amenities"`
	Text          string `bson:"text,omitempty"`
	Published     bool   `bson:"published"`
	CreatedAt     int64  `bson:"created_at"`
	UpdatedAt     int64  `bson:"updated_at"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	return reviewDocument{
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
		CreatedAt:     r.CreatedAt.UnixMilli(),
		UpdatedAt:     r.UpdatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:         domainreviews.ReviewID(d.ID),
		BookingID:  domainbooking.BookingID(d.BookingID),
		AuthorID:   d.AuthorID,
		SiteID:     domainsites.SiteID(d.SiteID),
		PropertyID: domainsites.PropertyID(d.PropertyID),
		Property: domainreviews.PropertyRatings{
			Location:      d.Location,
			Communication: d.Communication,
			Value:         d.Value,
		},
		Site: domainreviews.SiteRatings{
			Cleanliness: d.Cleanliness,
			Accuracy:    d.Accuracy,
			Amenities:   d.Amenities,
		},
		Text:      d.Text,
		Published: d.Published,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
