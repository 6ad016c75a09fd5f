// internal/domain/models/template.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommunicationTemplate is an email/notice template. Templates still live in
// the legacy document store, so this model carries bson tags.
type CommunicationTemplate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Channel   string             `bson:"channel" json:"channel"` // email | sms | notice
	Subject   string             `bson:"subject" json:"subject"`
	TextBody  string             `bson:"text_body" json:"text_body"`
	HTMLBody  string             `bson:"html_body,omitempty" json:"html_body,omitempty"` // sanitized before storage
	Variables []string           `bson:"variables,omitempty" json:"variables,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// ActivityRecord is an append-only trace of a mutating API call, kept in the
// legacy document store.
type ActivityRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Action    string             `bson:"action" json:"action"` // e.g. "donation.create"
	Entity    string             `bson:"entity" json:"entity"`
	EntityID  string             `bson:"entity_id,omitempty" json:"entity_id,omitempty"`
	Detail    string             `bson:"detail,omitempty" json:"detail,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
