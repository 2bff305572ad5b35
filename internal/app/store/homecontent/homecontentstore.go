// internal/app/store/homecontent/homecontentstore.go
package homecontentstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/schoolworks/schoolsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the home content singleton in site_content.
// Text sections and the embedded facility list live in one document whose
// version counter is bumped on every write.
type Store struct {
	c *mongo.Collection
}

// New creates a new home content store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("site_content")}
}

var (
	// ErrVersionConflict is returned when a guarded write carries a stale
	// version number, meaning another admin session changed the document
	// after this session last read it.
	ErrVersionConflict = errors.New("home content was modified by another session")

	// ErrFacilityNotFound is returned when no facility with the given id exists.
	ErrFacilityNotFound = errors.New("facility not found")
)

// Get returns the home content document, creating it with defaults on
// first access. The create is an idempotent upsert so concurrent first
// loads are safe.
func (s *Store) Get(ctx context.Context) (*models.HomeContent, error) {
	filter := bson.M{"_id": models.HomeContentID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"welcome":    models.DefaultWelcome,
			"facilities": []models.Facility{},
			"version":    int64(0),
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, filter, update, opts); err != nil {
		return nil, err
	}

	var hc models.HomeContent
	if err := s.c.FindOne(ctx, filter).Decode(&hc); err != nil {
		return nil, err
	}
	return &hc, nil
}

// TextUpdate holds the text sections of the home page.
type TextUpdate struct {
	Welcome string
	Mission string
	Vision  string
	History string
}

// SaveText updates the home page text sections.
// Uses upsert so it works whether the document exists or not. Text saves do
// not touch the facility list, so they are not version guarded.
func (s *Store) SaveText(ctx context.Context, input TextUpdate) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"welcome":    input.Welcome,
			"mission":    input.Mission,
			"vision":     input.Vision,
			"history":    input.History,
			"updated_at": now,
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": models.HomeContentID}, update, opts)
	return err
}

// AddFacility appends a facility with a freshly assigned id.
// Appends commute, so no version guard is needed; the counter still advances.
func (s *Store) AddFacility(ctx context.Context, f models.Facility) (models.Facility, error) {
	f.ID = uuid.NewString()

	update := bson.M{
		"$push": bson.M{"facilities": f},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
		"$inc":  bson.M{"version": 1},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": models.HomeContentID}, update, opts); err != nil {
		return models.Facility{}, err
	}
	return f, nil
}

// FacilityUpdate holds the editable fields of a facility.
// Image fields are only written when SetImage is true, so a text-only edit
// never clears an existing image.
type FacilityUpdate struct {
	Name        string
	Description string
	SetImage    bool
	ImagePath   string
	ImageName   string
}

// UpdateFacility patches the one facility with the given id.
// The write is guarded by the parent version: if another session changed the
// document since this session read it, ErrVersionConflict is returned and
// nothing is written.
func (s *Store) UpdateFacility(ctx context.Context, id string, version int64, upd FacilityUpdate) error {
	set := bson.M{
		"facilities.$[f].name":        upd.Name,
		"facilities.$[f].description": upd.Description,
		"updated_at":                  time.Now().UTC(),
	}
	if upd.SetImage {
		set["facilities.$[f].image_path"] = upd.ImagePath
		set["facilities.$[f].image_name"] = upd.ImageName
	}

	filter := bson.M{
		"_id":           models.HomeContentID,
		"version":       version,
		"facilities.id": id,
	}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"f.id": id}},
	})

	res, err := s.c.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyMiss(ctx, id)
	}
	return nil
}

// DeleteFacility removes the facility with the given id.
// Removal is by id only, so duplicate facilities with identical fields but
// different ids are unaffected. The version guard prevents deleting based on
// a stale view of the list.
func (s *Store) DeleteFacility(ctx context.Context, id string, version int64) error {
	filter := bson.M{
		"_id":           models.HomeContentID,
		"version":       version,
		"facilities.id": id,
	}
	update := bson.M{
		"$pull": bson.M{"facilities": bson.M{"id": id}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
		"$inc":  bson.M{"version": 1},
	}

	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyMiss(ctx, id)
	}
	return nil
}

// classifyMiss distinguishes a stale version from a missing facility after a
// guarded write matched nothing.
func (s *Store) classifyMiss(ctx context.Context, facilityID string) error {
	err := s.c.FindOne(ctx, bson.M{
		"_id":           models.HomeContentID,
		"facilities.id": facilityID,
	}).Err()
	if err == nil {
		return ErrVersionConflict
	}
	if err == mongo.ErrNoDocuments {
		return ErrFacilityNotFound
	}
	return err
}
