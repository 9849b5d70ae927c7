package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "campnest/internal/app/outbox"
)

const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusSent       = "sent"
)

// EventDocument is one staged event awaiting delivery.
type EventDocument struct {
	ID         string            `bson:"_id"`
	Name       string            `bson:"name"`
	Aggregate  string            `bson:"aggregate"`
	Payload    []byte            `bson:"payload"`
	Headers    map[string]string `bson:"headers,omitempty"`
	OccurredAt time.Time         `bson:"occurred_at"`
	Status     string            `bson:"status"`
	Attempts   int               `bson:"attempts"`
	NextRetry  time.Time         `bson:"next_retry"`
	ClaimedBy  string            `bson:"claimed_by,omitempty"`
	LastError  string            `bson:"last_error,omitempty"`
}

// Store persists outbox events in Mongo. Add runs inside the caller's
// session context, so staged events commit or roll back together with the
// domain writes that produced them.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection("outbox_events")}
}

func (s *Store) Add(ctx context.Context, record appoutbox.EventRecord) error {
	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	doc := EventDocument{
		ID:         id,
		Name:       record.Name,
		Aggregate:  record.Aggregate,
		Payload:    record.Payload,
		Headers:    record.Headers,
		OccurredAt: record.OccurredAt,
		Status:     statusPending,
		NextRetry:  time.Now(),
	}
	_, err := s.col.InsertOne(ctx, doc)
	return err
}

// Flush is a no-op: durability comes from the surrounding transaction.
func (s *Store) Flush(ctx context.Context) error {
	return nil
}

// Claim atomically takes one due pending event for the given worker.
// Returns nil, nil when nothing is due.
func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	filter := bson.M{
		"status":     statusPending,
		"next_retry": bson.M{"$lte": time.Now()},
	}
	update := bson.M{
		"$set": bson.M{"status": statusProcessing, "claimed_by": workerID},
		"$inc": bson.M{"attempts": 1},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
		SetReturnDocument(options.After)
	var doc EventDocument
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": statusSent, "last_error": ""},
	})
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id string, nextRetry time.Time, reason string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": statusPending, "next_retry": nextRetry, "last_error": reason, "claimed_by": ""},
	})
	return err
}

var _ appoutbox.Outbox = (*Store)(nil)
