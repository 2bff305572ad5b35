// internal/app/store/gallery/gallerystore.go
package gallerystore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/schoolworks/schoolsite/internal/app/system/blobpath"
	"github.com/schoolworks/schoolsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// BlobStore is the slice of the storage backend the gallery needs.
// waffle's storage.Store satisfies it.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
}

// Store provides access to the gallery_images collection.
// Each record pairs with a blob in the storage backend; Create and Delete
// run the blob half first and report partial failures with distinct errors.
type Store struct {
	c      *mongo.Collection
	blobs  BlobStore
	logger *zap.Logger
}

// New creates a new gallery store backed by the given blob storage.
func New(db *mongo.Database, blobs BlobStore, logger *zap.Logger) *Store {
	return &Store{
		c:      db.Collection("gallery_images"),
		blobs:  blobs,
		logger: logger,
	}
}

var (
	// ErrNotFound is returned when no image with the given id exists.
	ErrNotFound = errors.New("gallery image not found")

	// ErrPartialWrite is returned when the blob upload succeeded, the
	// document insert failed, and the compensating blob delete also failed.
	// The blob at the reported path is orphaned and needs manual cleanup.
	ErrPartialWrite = errors.New("gallery image partially written; blob may be orphaned")

	// ErrBlobOrphaned is returned by Delete when the document was removed
	// but the blob could not be deleted. The gallery no longer shows the
	// image; the blob needs manual cleanup.
	ErrBlobOrphaned = errors.New("gallery image removed but its file was left behind")
)

// List returns all gallery images, newest first.
func (s *Store) List(ctx context.Context) ([]models.GalleryImage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var images []models.GalleryImage
	if err := cur.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// GetByID loads a single gallery image record.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.GalleryImage, error) {
	var img models.GalleryImage
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&img)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Create uploads the image blob, then inserts the record.
// If the upload fails nothing is written. If the insert fails the fresh blob
// is deleted; if that cleanup also fails, ErrPartialWrite is returned so the
// orphaned path shows up in logs.
func (s *Store) Create(ctx context.Context, filename, contentType string, size int64, file io.Reader) (*models.GalleryImage, error) {
	path := blobpath.For("gallery", filename)

	putOpts := &storage.PutOptions{ContentType: contentType}
	if err := s.blobs.Put(ctx, path, file, putOpts); err != nil {
		return nil, fmt.Errorf("upload gallery image: %w", err)
	}

	img := models.GalleryImage{
		ID:          primitive.NewObjectID(),
		ImageName:   filename,
		StoragePath: path,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now().UTC(),
	}

	if _, err := s.c.InsertOne(ctx, img); err != nil {
		if delErr := s.blobs.Delete(ctx, path); delErr != nil {
			s.logger.Error("gallery image insert failed and blob cleanup failed",
				zap.String("path", path),
				zap.NamedError("insert_error", err),
				zap.NamedError("cleanup_error", delErr))
			return nil, fmt.Errorf("%w: %s", ErrPartialWrite, path)
		}
		return nil, fmt.Errorf("insert gallery image: %w", err)
	}

	return &img, nil
}

// Delete removes a gallery image record and its blob.
// The blob delete runs first; if it fails the record is still removed so the
// public gallery stops showing a broken image, and ErrBlobOrphaned reports
// the leftover file.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	img, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	blobErr := s.blobs.Delete(ctx, img.StoragePath)
	if blobErr != nil {
		s.logger.Warn("gallery blob delete failed, removing record anyway",
			zap.String("path", img.StoragePath),
			zap.Error(blobErr))
	}

	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	if blobErr != nil {
		return fmt.Errorf("%w: %s", ErrBlobOrphaned, img.StoragePath)
	}
	return nil
}

