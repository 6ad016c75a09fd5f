// internal/app/store/templates/store.go
package templatestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/mongo"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sevahub/sevahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateName is returned when a template name already exists.
var ErrDuplicateName = errors.New("a template with this name already exists")

// Store manages communication templates in the legacy document store.
type Store struct {
	c      *mongodrv.Collection
	policy *bluemonday.Policy
}

// New creates a template Store. HTML bodies are sanitized with a UGC policy
// before they are stored, never at render time.
func New(db *mongodrv.Database) *Store {
	return &Store{
		c:      db.Collection("communication_templates"),
		policy: bluemonday.UGCPolicy(),
	}
}

// EnsureIndexes creates the unique name index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongodrv.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_template_name"),
	})
	return err
}

// Create inserts a new template after sanitizing its HTML body.
func (s *Store) Create(ctx context.Context, t models.CommunicationTemplate) (models.CommunicationTemplate, error) {
	t.ID = primitive.NewObjectID()
	t.Name = strings.TrimSpace(t.Name)
	t.HTMLBody = s.policy.Sanitize(t.HTMLBody)
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if mongo.IsDup(err) {
			return models.CommunicationTemplate{}, ErrDuplicateName
		}
		return models.CommunicationTemplate{}, err
	}
	return t, nil
}

// GetByID loads one template. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CommunicationTemplate, error) {
	var t models.CommunicationTemplate
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// List returns every template, newest first.
func (s *Store) List(ctx context.Context) ([]models.CommunicationTemplate, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CommunicationTemplate
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the mutable fields of a template. Returns nil when absent.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, t models.CommunicationTemplate) (*models.CommunicationTemplate, error) {
	set := bson.M{
		"name":       strings.TrimSpace(t.Name),
		"channel":    t.Channel,
		"subject":    t.Subject,
		"text_body":  t.TextBody,
		"html_body":  s.policy.Sanitize(t.HTMLBody),
		"variables":  t.Variables,
		"updated_at": time.Now().UTC(),
	}
	var updated models.CommunicationTemplate
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, nil
		}
		if mongo.IsDup(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes a template. Reports whether a document was deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Render substitutes {{name}} placeholders in the subject and both bodies.
// Unknown placeholders are left in place so a missing variable is visible in
// the rendered output rather than silently blank.
func Render(t models.CommunicationTemplate, vars map[string]string) (subject, text, html string) {
	sub := func(body string) string {
		for k, v := range vars {
			body = strings.ReplaceAll(body, "{{"+k+"}}", v)
		}
		return body
	}
	return sub(t.Subject), sub(t.TextBody), sub(t.HTMLBody)
}
