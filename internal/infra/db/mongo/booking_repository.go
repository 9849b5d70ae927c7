package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "campnest/internal/domain/booking"
	domainpricing "campnest/internal/domain/pricing"
	domainrange "campnest/internal/domain/shared/daterange"
	domainsites "campnest/internal/domain/sites"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ByCode(ctx context.Context, code string) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"code": code}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID domainsites.HostID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"host_id": hostID})
}

func (r *BookingRepository) ListBySite(ctx context.Context, siteID domainsites.SiteID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"site_id": siteID})
}

func (r *BookingRepository) ListActiveOverlapping(ctx context.Context, siteID domainsites.SiteID, dr domainrange.DateRange) ([]*domainbooking.Booking, error) {
	// Half-open overlap: doc.check_in < dr.CheckOut && doc.check_out > dr.CheckIn.
	filter := bson.M{
		"site_id":         siteID,
		"status":          bson.M{"$in": []string{string(domainbooking.StatusPending), string(domainbooking.StatusConfirmed)}},
		"range.check_in":  bson.M{"$lt": dr.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": dr.CheckIn.UnixMilli()},
	}
	return r.find(ctx, filter)
}

func (r *BookingRepository) ListDueForCompletion(ctx context.Context, now time.Time, limit int) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"status":          string(domainbooking.StatusConfirmed),
		"range.check_out": bson.M{"$lte": now.UnixMilli()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "range.check_out", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeBookings(ctx, cursor)
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeBookings(ctx, cursor)
}

func decodeBookings(ctx context.Context, cursor *mongo.Cursor) ([]*domainbooking.Booking, error) {
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type bookingDocument struct {
	ID            string                `bson:"_id"`
	Code          string                `bson:"code"`
	SiteID        string                `bson:"site_id"`
	PropertyID    string                `bson:"property_id"`
	GuestID       string                `bson:"guest_id"`
	HostID        string                `bson:"host_id"`
	Range         rangeDocument         `bson:"range"`
	Nights        int                   `bson:"nights"`
	Occupancy     occupancyDocument     `bson:"occupancy"`
	Price         priceDocument         `bson:"price"`
	Schedule      scheduleDocument      `bson:"schedule"`
	Status        string                `bson:"status"`
	PaymentStatus string                `bson:"payment_status"`
	CheckoutURL   string                `bson:"checkout_url,omitempty"`
	GuestMessage  string                `bson:"guest_message,omitempty"`
	HostMessage   string                `bson:"host_message,omitempty"`
	Cancellation  *cancellationDocument `bson:"cancellation,omitempty"`
	Reviewed      bool                  `bson:"reviewed"`
	ReviewID      string                `bson:"review_id,omitempty"`
	CreatedAt     int64                 `bson:"created_at"`
	UpdatedAt     int64                 `bson:"updated_at"`
	Version       int64                 `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type occupancyDocument struct {
	Guests   int `bson:"guests"`
	Pets     int `bson:"pets"`
	Vehicles int `bson:"vehicles"`
}

type priceDocument struct {
	Currency      string `bson:"currency"`
	Nights        int    `bson:"nights"`
	Subtotal      int64  `bson:"subtotal"`
	CleaningFee   int64  `bson:"cleaning_fee"`
	PetFee        int64  `bson:"pet_fee"`
	ExtraGuestFee int64  `bson:"extra_guest_fee"`
	ServiceFee    int64  `bson:"service_fee"`
	Tax           int64  `bson:"tax"`
	Total         int64  `bson:"total"`
}

type scheduleDocument struct {
	FullRefundDays int `bson:"full_refund_days"`
	HalfRefundDays int `bson:"half_refund_days"`
}

type cancellationDocument struct {
	Actor   string `bson:"actor"`
	Reason  string `bson:"reason,omitempty"`
	At      int64  `bson:"at"`
	Refund  int64  `bson:"refund"`
	Penalty int64  `bson:"penalty"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:         string(b.ID),
		Code:       b.Code,
		SiteID:     string(b.SiteID),
		PropertyID: string(b.PropertyID),
		GuestID:    b.GuestID,
		HostID:     string(b.HostID),
		Range:      rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Nights:     b.Nights,
		Occupancy:  occupancyDocument{Guests: b.Occupancy.Guests, Pets: b.Occupancy.Pets, Vehicles: b.Occupancy.Vehicles},
		Price: priceDocument{
			Currency:      b.Price.Currency,
			Nights:        b.Price.Nights,
			Subtotal:      b.Price.Subtotal,
			CleaningFee:   b.Price.CleaningFee,
			PetFee:        b.Price.PetFee,
			ExtraGuestFee: b.Price.ExtraGuestFee,
			ServiceFee:    b.Price.ServiceFee,
			Tax:           b.Price.Tax,
			Total:         b.Price.Total,
		},
		Schedule:      scheduleDocument{FullRefundDays: b.Schedule.FullRefundDays, HalfRefundDays: b.Schedule.HalfRefundDays},
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		CheckoutURL:   b.CheckoutURL,
		GuestMessage:  b.GuestMessage,
		HostMessage:   b.HostMessage,
		Reviewed:      b.Reviewed,
		ReviewID:      b.ReviewID,
		CreatedAt:     b.CreatedAt.UnixMilli(),
		UpdatedAt:     b.UpdatedAt.UnixMilli(),
		Version:       b.Version,
	}
	if b.Cancellation != nil {
		doc.Cancellation = &cancellationDocument{
			Actor:   string(b.Cancellation.Actor),
			Reason:  b.Cancellation.Reason,
			At:      b.Cancellation.At.UnixMilli(),
			Refund:  b.Cancellation.Refund,
			Penalty: b.Cancellation.Penalty,
		}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	b := &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		Code:       d.Code,
		SiteID:     domainsites.SiteID(d.SiteID),
		PropertyID: domainsites.PropertyID(d.PropertyID),
		GuestID:    d.GuestID,
		HostID:     domainsites.HostID(d.HostID),
		Range:      domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Nights:     d.Nights,
		Occupancy:  domainbooking.Occupancy{Guests: d.Occupancy.Guests, Pets: d.Occupancy.Pets, Vehicles: d.Occupancy.Vehicles},
		Price: domainpricing.Breakdown{
			Currency:      d.Price.Currency,
			Nights:        d.Price.Nights,
			Subtotal:      d.Price.Subtotal,
			CleaningFee:   d.Price.CleaningFee,
			PetFee:        d.Price.PetFee,
			ExtraGuestFee: d.Price.ExtraGuestFee,
			ServiceFee:    d.Price.ServiceFee,
			Tax:           d.Price.Tax,
			Total:         d.Price.Total,
		},
		Schedule:      domainbooking.CancellationSchedule{FullRefundDays: d.Schedule.FullRefundDays, HalfRefundDays: d.Schedule.HalfRefundDays},
		Status:        domainbooking.Status(d.Status),
		PaymentStatus: domainbooking.PaymentStatus(d.PaymentStatus),
		CheckoutURL:   d.CheckoutURL,
		GuestMessage:  d.GuestMessage,
		HostMessage:   d.HostMessage,
		Reviewed:      d.Reviewed,
		ReviewID:      d.ReviewID,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
	if d.Cancellation != nil {
		b.Cancellation = &domainbooking.Cancellation{
			Actor:   domainbooking.CancelActor(d.Cancellation.Actor),
			Reason:  d.Cancellation.Reason,
			At:      timestampToTime(d.Cancellation.At),
			Refund:  d.Cancellation.Refund,
			Penalty: d.Cancellation.Penalty,
		}
	}
	return b
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
