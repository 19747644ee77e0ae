package api

import (
	"context"
	"log"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylefit/tryon-server/models"
	"github.com/stylefit/tryon-server/repositories"
)

// appendAudit records a handler-level audit entry best-effort.
func appendAudit(ctx context.Context, logs repositories.LogRepository, r *http.Request, action string, userID *primitive.ObjectID, details map[string]interface{}) {
	meta := MetaFromRequest(r)
	entry := models.AuditLogEntry{
		Action:    action,
		UserID:    userID,
		Details:   details,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := logs.Append(ctx, entry); err != nil {
		log.Printf("Failed to append audit entry %s: %v", action, err)
	}
}
