// internal/domain/models/homecontent.go
package models

import "time"

// HomeContent is the singleton document backing the public home page.
// It lives in the site_content collection under the fixed id "home".
//
// Facilities are embedded as an ordered array; every array mutation bumps
// Version so concurrent admin sessions cannot silently overwrite each other.
type HomeContent struct {
	ID         string     `bson:"_id" json:"id"`
	Welcome    string     `bson:"welcome" json:"welcome"`
	Mission    string     `bson:"mission" json:"mission"`
	Vision     string     `bson:"vision" json:"vision"`
	History    string     `bson:"history" json:"history"`
	Facilities []Facility `bson:"facilities" json:"facilities"`
	Version    int64      `bson:"version" json:"version"`
	UpdatedAt  *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Facility is a school facility embedded in HomeContent.
// Each facility carries a stable id assigned at creation; edits and deletes
// address facilities by that id, never by array position.
type Facility struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	ImagePath   string `bson:"image_path,omitempty" json:"image_path,omitempty"` // storage path of uploaded image
	ImageName   string `bson:"image_name,omitempty" json:"image_name,omitempty"` // original filename
}

// HasImage returns true if an image has been uploaded for the facility.
func (f *Facility) HasImage() bool {
	return f.ImagePath != ""
}

// HomeContentID is the fixed document id of the home content singleton.
const HomeContentID = "home"

// Defaults shown before an admin has saved any home content.
const (
	DefaultSiteName = "Sunrise Public School"
	DefaultWelcome  = "Welcome to Sunrise Public School. This text can be customized from the admin console."
)
