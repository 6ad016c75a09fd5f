// internal/app/store/activity/store.go
package activity

import (
	"context"
	"time"

	"github.com/sevahub/sevahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Actions recorded against the legacy document store. The activity trail
// predates the relational migration and was deliberately left where it was.
const (
	ActionUserCreated     = "user.created"
	ActionUserUpdated     = "user.updated"
	ActionUserDeleted     = "user.deleted"
	ActionPasswordChanged = "user.password_changed"
	ActionLogin           = "user.login"

	ActionDonationCreated    = "donation.created"
	ActionExpenseCreated     = "expense.created"
	ActionApplicationDecided = "application.decided"
)

// Store appends and reads activity records.
type Store struct {
	c *mongo.Collection
}

// New creates an activity Store over the legacy database.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activity_records")}
}

// EnsureIndexes creates the indexes the list queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_activity_user"),
		},
		{
			Keys:    bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_activity_entity"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Record appends one activity record. Records are immutable once written.
func (s *Store) Record(ctx context.Context, rec models.ActivityRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// ListByUser returns a user's most recent activity, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int64) ([]models.ActivityRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ActivityRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByEntity returns the activity trail for one entity, newest first.
func (s *Store) ListByEntity(ctx context.Context, entity, entityID string, limit int64) ([]models.ActivityRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"entity": entity, "entity_id": entityID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ActivityRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
