// internal/domain/models/contactinfo.go
package models

import (
	"strings"
	"time"
)

// ContactInfo is the singleton document with the school's contact details.
// It lives in the school_data collection under the fixed id "contactInfo".
type ContactInfo struct {
	ID        string     `bson:"_id" json:"id"`
	Address   string     `bson:"address" json:"address"`
	Email     string     `bson:"email" json:"email"`
	Phone     string     `bson:"phone" json:"phone"`
	MapURL    string     `bson:"map_url" json:"map_url"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ContactInfoID is the fixed document id of the contact info singleton.
const ContactInfoID = "contactInfo"

// IsEmbeddableMapURL reports whether a map URL is likely to work inside an
// iframe. Only Google Maps embed URLs are known to allow framing; anything
// else gets a preview warning in the editor but is still saved as-is.
// An empty URL is fine (no map shown).
func IsEmbeddableMapURL(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return true
	}
	return strings.Contains(url, "google.com/maps/embed") ||
		strings.Contains(url, "maps.google.com/embed")
}
