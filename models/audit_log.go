package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit actions. The set is closed; repositories reject anything else.
const (
	ActionUserRegister          = "user_register"
	ActionUserLogin             = "user_login"
	ActionUserLogout            = "user_logout"
	ActionPasswordResetRequest  = "password_reset_request"
	ActionPasswordResetComplete = "password_reset_complete"
	ActionProfileUpdate         = "profile_update"
	ActionProfileImageUpload    = "profile_image_upload"
	ActionAccountDelete         = "account_delete"
	ActionTryOnRequest          = "tryon_request"
	ActionTryOnComplete         = "tryon_complete"
	ActionTryOnFailed           = "tryon_failed"
	ActionGarmentCreate         = "garment_create"
	ActionGarmentUpdate         = "garment_update"
	ActionGarmentDelete         = "garment_delete"
	ActionUserBlock             = "user_block"
	ActionUserUnblock           = "user_unblock"
	ActionAdminAction           = "admin_action"
)

var auditActions = []string{
	ActionUserRegister, ActionUserLogin, ActionUserLogout,
	ActionPasswordResetRequest, ActionPasswordResetComplete,
	ActionProfileUpdate, ActionProfileImageUpload, ActionAccountDelete,
	ActionTryOnRequest, ActionTryOnComplete, ActionTryOnFailed,
	ActionGarmentCreate, ActionGarmentUpdate, ActionGarmentDelete,
	ActionUserBlock, ActionUserUnblock, ActionAdminAction,
}

// AuditLogEntry is an append-only record of a significant action. Entries
// are never updated after creation.
type AuditLogEntry struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Action    string                 `bson:"action" json:"action"`
	UserID    *primitive.ObjectID    `bson:"user_id,omitempty" json:"userId,omitempty"` // nil for anonymous/system actions
	Details   map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	IPAddress string                 `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	UserAgent string                 `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	CreatedAt time.Time              `bson:"created_at" json:"createdAt"`
}

// ValidAuditAction reports whether a is part of the closed action set.
func ValidAuditAction(a string) bool {
	return contains(auditActions, a)
}
