package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ProfileGenders lists the accepted body-profile gender values.
var ProfileGenders = []string{"male", "female", "other"}

// BodyTypes lists the accepted body-type values.
var BodyTypes = []string{"slim", "regular", "athletic", "plus"}

// BodyInfo is the optional body-profile sub-record used to pick
// well-fitting garments.
type BodyInfo struct {
	Gender   string  `bson:"gender,omitempty" json:"gender,omitempty"`
	Height   float64 `bson:"height,omitempty" json:"height,omitempty"` // in cm
	BodyType string  `bson:"body_type,omitempty" json:"bodyType,omitempty"`
}

// User represents a registered account.
type User struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name                 string               `bson:"name" json:"name"`
	Email                string               `bson:"email" json:"email"` // stored lowercased, unique
	Password             string               `bson:"password" json:"-"`  // bcrypt hash, never serialized
	Role                 string               `bson:"role" json:"role"`
	ProfileImage         string               `bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	BodyInfo             *BodyInfo            `bson:"body_info,omitempty" json:"bodyInfo,omitempty"`
	Favorites            []primitive.ObjectID `bson:"favorites,omitempty" json:"favorites"`
	IsBlocked            bool                 `bson:"is_blocked" json:"isBlocked"`
	ResetPasswordToken   string               `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpires time.Time            `bson:"reset_password_expires,omitempty" json:"-"`
	CreatedAt            time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time            `bson:"updated_at" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidProfileGender reports whether g is an accepted profile gender.
func ValidProfileGender(g string) bool {
	return contains(ProfileGenders, g)
}

// ValidBodyType reports whether b is an accepted body type.
func ValidBodyType(b string) bool {
	return contains(BodyTypes, b)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
