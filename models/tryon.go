package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Try-on statuses. StatusPending is part of the stored schema but is never
// assigned: records are created directly in processing, synchronously with
// the input-image upload. It stays reserved for a future queued submission
// path.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// TryOnRequest represents one attempt to composite a person photo with a
// garment image.
//
// Invariants: OutputImageURL is set iff status is completed; ErrorMessage
// is set iff status is failed; once completed or failed the status never
// changes again.
type TryOnRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"userId"`
	GarmentID      primitive.ObjectID `bson:"garment_id" json:"garmentId"`
	InputImageURL  string             `bson:"input_image_url" json:"inputImageUrl"`
	OutputImageURL string             `bson:"output_image_url,omitempty" json:"outputImageUrl,omitempty"`
	ProcessingTime int64              `bson:"processing_time,omitempty" json:"processingTime,omitempty"` // milliseconds
	Status         string             `bson:"status" json:"status"`
	ErrorMessage   string             `bson:"error_message,omitempty" json:"errorMessage,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// TryOnHistoryItem is a TryOnRequest joined with its garment summary for
// history listings.
type TryOnHistoryItem struct {
	TryOnRequest `bson:",inline"`
	Garment      *GarmentSummary `bson:"garment,omitempty" json:"garment,omitempty"`
}
