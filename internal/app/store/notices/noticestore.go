// internal/app/store/notices/noticestore.go
package noticestore

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

// Store provides access to the notice board singleton in site_content.
// All notices live in one array field; edits and toggles address a notice by
// its id through arrayFilters, guarded by the parent version counter.
type Store struct {
	c *mongo.Collection
}

// New creates a new notice store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("site_content")}
}

var (
	// ErrVersionConflict is returned when a guarded write carries a stale
	// version number, meaning another admin session changed the board after
	// this session last read it.
	ErrVersionConflict = errors.New("notice board was modified by another session")

	// ErrNoticeNotFound is returned when no notice with the given id exists.
	ErrNoticeNotFound = errors.New("notice not found")
)

// Load returns the notice board, creating an empty one on first access.
// The create is an idempotent upsert so concurrent first loads are safe.
func (s *Store) Load(ctx context.Context) (*models.NoticeBoard, error) {
	filter := bson.M{"_id": models.NoticeBoardID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"notices_list": []models.Notice{},
			"version":      int64(0),
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, filter, update, opts); err != nil {
		return nil, err
	}

	var board models.NoticeBoard
	if err := s.c.FindOne(ctx, filter).Decode(&board); err != nil {
		return nil, err
	}
	return &board, nil
}

// Add appends a notice with a freshly assigned id and creation time.
// The date is normalized to YYYY-MM-DD, defaulting to today. Appends commute,
// so no version guard is needed; the counter still advances.
func (s *Store) Add(ctx context.Context, n models.Notice) (models.Notice, error) {
	now := time.Now().UTC()
	n.ID = uuid.NewString()
	n.CreatedAt = now
	n.Date = models.NormalizeNoticeDate(n.Date, now)

	update := bson.M{
		"$push": bson.M{"notices_list": n},
		"$inc":  bson.M{"version": 1},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": models.NoticeBoardID}, update, opts); err != nil {
		return models.Notice{}, err
	}
	return n, nil
}

// NoticeUpdate holds the editable fields of a notice.
type NoticeUpdate struct {
	Title     string
	Content   string
	Date      string
	Important bool
	Active    bool
}

// Update patches the one notice with the given id.
// The write is guarded by the parent version: a stale version returns
// ErrVersionConflict and nothing is written.
func (s *Store) Update(ctx context.Context, id string, version int64, upd NoticeUpdate) error {
	update := bson.M{
		"$set": bson.M{
			"notices_list.$[n].title":     upd.Title,
			"notices_list.$[n].content":   upd.Content,
			"notices_list.$[n].date":      models.NormalizeNoticeDate(upd.Date, time.Now()),
			"notices_list.$[n].important": upd.Important,
			"notices_list.$[n].active":    upd.Active,
		},
		"$inc": bson.M{"version": 1},
	}
	return s.guardedUpdate(ctx, id, version, update, s.defaultArrayOpts(id))
}

// SetActive flips the visibility flag of one notice.
func (s *Store) SetActive(ctx context.Context, id string, version int64, active bool) error {
	update := bson.M{
		"$set": bson.M{"notices_list.$[n].active": active},
		"$inc": bson.M{"version": 1},
	}
	return s.guardedUpdate(ctx, id, version, update, s.defaultArrayOpts(id))
}

// SetImportant flips the importance flag of one notice.
func (s *Store) SetImportant(ctx context.Context, id string, version int64, important bool) error {
	update := bson.M{
		"$set": bson.M{"notices_list.$[n].important": important},
		"$inc": bson.M{"version": 1},
	}
	return s.guardedUpdate(ctx, id, version, update, s.defaultArrayOpts(id))
}

// Delete removes the notice with the given id.
// Removal is by id only, so duplicate notices with identical fields but
// different ids are unaffected.
func (s *Store) Delete(ctx context.Context, id string, version int64) error {
	update := bson.M{
		"$pull": bson.M{"notices_list": bson.M{"id": id}},
		"$inc":  bson.M{"version": 1},
	}
	return s.guardedUpdate(ctx, id, version, update, nil)
}

func (s *Store) defaultArrayOpts(id string) *options.UpdateOptions {
	return options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"n.id": id}},
	})
}

// guardedUpdate runs an update against the board filtered by notice id and
// version, then classifies a miss as either a stale version or a missing
// notice.
func (s *Store) guardedUpdate(ctx context.Context, id string, version int64, update bson.M, opts *options.UpdateOptions) error {
	filter := bson.M{
		"_id":             models.NoticeBoardID,
		"version":         version,
		"notices_list.id": id,
	}

	var res *mongo.UpdateResult
	var err error
	if opts != nil {
		res, err = s.c.UpdateOne(ctx, filter, update, opts)
	} else {
		res, err = s.c.UpdateOne(ctx, filter, update)
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyMiss(ctx, id)
	}
	return nil
}

func (s *Store) classifyMiss(ctx context.Context, noticeID string) error {
	err := s.c.FindOne(ctx, bson.M{
		"_id":             models.NoticeBoardID,
		"notices_list.id": noticeID,
	}).Err()
	if err == nil {
		return ErrVersionConflict
	}
	if err == mongo.ErrNoDocuments {
		return ErrNoticeNotFound
	}
	return err
}
