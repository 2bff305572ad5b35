// internal/app/store/contact/contactstore.go
package contactstore

import (
	"context"
	"time"

	"github.com/schoolworks/schoolsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the contact info singleton in school_data.
type Store struct {
	c *mongo.Collection
}

// New creates a new contact info store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("school_data")}
}

// Get returns the school's contact info.
// If none has been saved, an empty record is returned.
func (s *Store) Get(ctx context.Context) (*models.ContactInfo, error) {
	var ci models.ContactInfo
	err := s.c.FindOne(ctx, bson.M{"_id": models.ContactInfoID}).Decode(&ci)
	if err == mongo.ErrNoDocuments {
		return &models.ContactInfo{ID: models.ContactInfoID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

// UpdateInput holds the editable contact fields.
type UpdateInput struct {
	Address string
	Email   string
	Phone   string
	MapURL  string
}

// Save replaces the contact info, creating the document if needed.
// Contact info is a handful of scalar fields edited on one form, so
// last-write-wins is acceptable here.
func (s *Store) Save(ctx context.Context, input UpdateInput) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"address":    input.Address,
			"email":      input.Email,
			"phone":      input.Phone,
			"map_url":    input.MapURL,
			"updated_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": models.ContactInfoID}, update, opts)
	return err
}
