package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GarmentCategories is the single source of truth for the category enum,
// shared by request validation and persistence.
var GarmentCategories = []string{
	"shirt", "kurti", "saree", "dress", "pants",
	"jacket", "t-shirt", "blouse", "sweater", "other",
}

// GarmentGenders lists the accepted garment gender targets.
var GarmentGenders = []string{"male", "female", "unisex"}

// Garment is a catalog entry available for try-on.
type Garment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Gender      string             `bson:"gender" json:"gender"`
	Fabric      string             `bson:"fabric,omitempty" json:"fabric,omitempty"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    string             `bson:"image_url" json:"imageUrl"`
	IsActive    bool               `bson:"is_active" json:"isActive"`
	CreatedBy   primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// GarmentSummary is the slim projection embedded in try-on history items
// and analytics rows.
type GarmentSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Category string             `bson:"category" json:"category"`
	ImageURL string             `bson:"image_url" json:"imageUrl"`
}

// ValidCategory reports whether c is an accepted garment category.
func ValidCategory(c string) bool {
	return contains(GarmentCategories, c)
}

// ValidGarmentGender reports whether g is an accepted garment gender target.
func ValidGarmentGender(g string) bool {
	return contains(GarmentGenders, g)
}
