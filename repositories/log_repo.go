package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stylefit/tryon-server/models"
)

// ListLogsOptions filters the admin audit-log listing.
type ListLogsOptions struct {
	Action string
	UserID *primitive.ObjectID
	Page   int
	Limit  int
}

// LogRepository appends and lists audit entries. Entries are immutable;
// there is no update path.
type LogRepository interface {
	Append(ctx context.Context, entry models.AuditLogEntry) error
	List(ctx context.Context, opts ListLogsOptions) ([]models.AuditLogEntry, int64, error)
	RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.AuditLogEntry, error)
}

type mongoLogRepository struct {
	col *mongo.Collection
}

// NewLogRepository returns the MongoDB-backed LogRepository.
func NewLogRepository(db *mongo.Database) LogRepository {
	return &mongoLogRepository{col: db.Collection(logsCollection)}
}

func (r *mongoLogRepository) Append(ctx context.Context, entry models.AuditLogEntry) error {
	if !models.ValidAuditAction(entry.Action) {
		return fmt.Errorf("unknown audit action %q", entry.Action)
	}
	entry.ID = primitive.NilObjectID
	entry.CreatedAt = time.Now()

	if _, err := r.col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *mongoLogRepository) List(ctx context.Context, opts ListLogsOptions) ([]models.AuditLogEntry, int64, error) {
	filter := bson.M{}
	if opts.Action != "" {
		filter["action"] = opts.Action
	}
	if opts.UserID != nil {
		filter["user_id"] = *opts.UserID
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	if opts.Limit < 1 {
		opts.Limit = 50
	}
	cursor, err := r.col.Find(ctx, filter, paginate(opts.Page, opts.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.AuditLogEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, total, nil
}

func (r *mongoLogRepository) RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.AuditLogEntry, error) {
	if limit < 1 {
		limit = 20
	}
	entries, _, err := r.List(ctx, ListLogsOptions{UserID: &userID, Page: 1, Limit: limit})
	return entries, err
}
