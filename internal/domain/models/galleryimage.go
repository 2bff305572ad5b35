// internal/domain/models/galleryimage.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GalleryImage is one uploaded gallery photo: a document in the
// gallery_images collection plus a blob at StoragePath. The display URL is
// derived from StoragePath by the storage backend, so records stay valid
// when the storage base URL changes.
type GalleryImage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ImageName   string             `bson:"image_name" json:"image_name"`     // original filename
	StoragePath string             `bson:"storage_path" json:"storage_path"` // path in storage backend
	ContentType string             `bson:"content_type,omitempty" json:"content_type,omitempty"`
	Size        int64              `bson:"size,omitempty" json:"size,omitempty"`
	UploadedAt  time.Time          `bson:"uploaded_at" json:"uploaded_at"`
}
