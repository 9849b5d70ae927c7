package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "campnest/internal/domain/availability"
	domainrange "campnest/internal/domain/shared/daterange"
	domainsites "campnest/internal/domain/sites"
)

// AvailabilityRepository stores one document per blocked site-day. The
// unique (site_id, date) index is what makes ClaimRange safe under
// concurrency: of two racing claims for the same day, exactly one insert
// succeeds and the other hits a duplicate key.
type AvailabilityRepository struct {
	col *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{col: db.Collection("calendar_days")}
}

// EnsureIndexes creates the unique calendar index. Must run before the first
// claim; without it concurrent claims can double-book.
func (r *AvailabilityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "site_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_site_date"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("by_date"),
		},
	})
	return err
}

type calendarDocument struct {
	ID        string `bson:"_id"`
	SiteID    string `bson:"site_id"`
	Date      int64  `bson:"date"`
	Available bool   `bson:"available"`
	BlockType string `bson:"block_type"`
	Reason    string `bson:"reason,omitempty"`
}

func calendarID(siteID domainsites.SiteID, date time.Time) string {
	return fmt.Sprintf("%s:%s", siteID, date.UTC().Format("2006-01-02"))
}

func (r *AvailabilityRepository) IsRangeFree(ctx context.Context, siteID domainsites.SiteID, dr domainrange.DateRange) (bool, error) {
	count, err := r.col.CountDocuments(ctx, r.rangeFilter(siteID, dr))
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *AvailabilityRepository) ClaimRange(ctx context.Context, siteID domainsites.SiteID, dr domainrange.DateRange, blockType domainavailability.BlockType, reason string) error {
	dates := dr.Dates()

	// Re-claiming the exact same block (same type and reason) is an upsert,
	// so a retried command lands on its own rows instead of conflicting.
	existing, err := r.BlockedInRange(ctx, siteID, dr)
	if err != nil {
		return err
	}
	held := make(map[int64]bool, len(existing))
	for _, rec := range existing {
		if rec.BlockType != blockType || rec.Reason != reason {
			return domainavailability.ErrRangeConflict
		}
		held[rec.Date.UnixMilli()] = true
	}

	docs := make([]interface{}, 0, len(dates))
	inserted := make([]string, 0, len(dates))
	for _, date := range dates {
		if held[date.UnixMilli()] {
			continue
		}
		id := calendarID(siteID, date)
		docs = append(docs, calendarDocument{
			ID:        id,
			SiteID:    string(siteID),
			Date:      date.UnixMilli(),
			Available: false,
			BlockType: string(blockType),
			Reason:    reason,
		})
		inserted = append(inserted, id)
	}
	if len(docs) == 0 {
		return nil
	}

	// Ordered insert: the first duplicate aborts the batch. Rows inserted
	// before the failure are cleaned up so a losing claim leaves nothing.
	if _, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			_, _ = r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": inserted}, "block_type": string(blockType), "reason": reason})
			return domainavailability.ErrRangeConflict
		}
		return err
	}
	return nil
}

func (r *AvailabilityRepository) ReleaseRange(ctx context.Context, siteID domainsites.SiteID, dr domainrange.DateRange, filter domainavailability.BlockType) error {
	query := r.rangeFilter(siteID, dr)
	query["block_type"] = string(filter)
	_, err := r.col.DeleteMany(ctx, query)
	return err
}

func (r *AvailabilityRepository) BlockedInRange(ctx context.Context, siteID domainsites.SiteID, dr domainrange.DateRange) ([]domainavailability.Record, error) {
	cursor, err := r.col.Find(ctx, r.rangeFilter(siteID, dr), options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainavailability.Record
	for cursor.Next(ctx) {
		var doc calendarDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, domainavailability.Record{
			SiteID:    domainsites.SiteID(doc.SiteID),
			Date:      time.UnixMilli(doc.Date).UTC(),
			Available: doc.Available,
			BlockType: domainavailability.BlockType(doc.BlockType),
			Reason:    doc.Reason,
		})
	}
	return out, cursor.Err()
}

func (r *AvailabilityRepository) UnavailableSites(ctx context.Context, dr domainrange.DateRange) ([]domainsites.SiteID, error) {
	filter := bson.M{
		"date": bson.M{"$gte": dr.CheckIn.UnixMilli(), "$lt": dr.CheckOut.UnixMilli()},
	}
	raw, err := r.col.Distinct(ctx, "site_id", filter)
	if err != nil {
		return nil, err
	}
	out := make([]domainsites.SiteID, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, domainsites.SiteID(s))
		}
	}
	return out, nil
}

func (r *AvailabilityRepository) rangeFilter(siteID domainsites.SiteID, dr domainrange.DateRange) bson.M {
	return bson.M{
		"site_id": string(siteID),
		"date":    bson.M{"$gte": dr.CheckIn.UnixMilli(), "$lt": dr.CheckOut.UnixMilli()},
	}
}

var _ domainavailability.Repository = (*AvailabilityRepository)(nil)
