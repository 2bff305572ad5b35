// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account that can sign in to the admin console.
// Email is the login identifier and is stored lowercase.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Email    string             `bson:"email" json:"email"`

	// bcrypt hash, never serialized
	PasswordHash *string `bson:"password_hash,omitempty" json:"-"`

	Role   string `bson:"role" json:"role"`                         // admin
	Status string `bson:"status,omitempty" json:"status,omitempty"` // active, disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User roles
const (
	RoleAdmin = "admin"
)

// User statuses
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// IsActive returns true unless the account has been disabled.
// An empty status counts as active for records created before the field existed.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == StatusActive
}
