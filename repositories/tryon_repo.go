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

// PopularGarment is one row of the popular-garments ranking.
type PopularGarment struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Category   string             `bson:"category" json:"category"`
	ImageURL   string             `bson:"image_url" json:"imageUrl"`
	TryOnCount int64              `bson:"tryon_count" json:"tryOnCount"`
}

// DailyStat is one calendar-day bucket of the daily trend. Date is a
// YYYY-MM-DD string in UTC.
type DailyStat struct {
	Date      string `bson:"_id" json:"date"`
	Total     int64  `bson:"total" json:"total"`
	Completed int64  `bson:"completed" json:"completed"`
	Failed    int64  `bson:"failed" json:"failed"`
}

// TryOnRepository persists try-on requests and answers the analytics
// aggregations over them. Lookups that miss return (nil, nil).
type TryOnRepository interface {
	Create(ctx context.Context, req *models.TryOnRequest) error
	FindByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) (*models.TryOnRequest, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.TryOnHistoryItem, int64, error)
	FindAllByUser(ctx context.Context, userID primitive.ObjectID) ([]models.TryOnRequest, error)
	RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.TryOnHistoryItem, error)
	MarkCompleted(ctx context.Context, id primitive.ObjectID, outputImageURL string, processingMs int64) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, errorMessage string, processingMs int64) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	AverageProcessingTime(ctx context.Context) (float64, error)
	PopularGarments(ctx context.Context, limit int) ([]PopularGarment, error)
	DailyStats(ctx context.Context, days int) ([]DailyStat, error)
}

type mongoTryOnRepository struct {
	col *mongo.Collection
}

// NewTryOnRepository returns the MongoDB-backed TryOnRepository.
func NewTryOnRepository(db *mongo.Database) TryOnRepository {
	return &mongoTryOnRepository{col: db.Collection(tryonsCollection)}
}

func (r *mongoTryOnRepository) Create(ctx context.Context, req *models.TryOnRequest) error {
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create try-on record: %w", err)
	}
	req.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoTryOnRepository) FindByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) (*models.TryOnRequest, error) {
	var req models.TryOnRequest
	err := r.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find try-on record: %w", err)
	}
	return &req, nil
}

// ListByUser returns one page of the user's history, newest first, each
// item joined with its garment summary.
func (r *mongoTryOnRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.TryOnHistoryItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	filter := bson.M{"user_id": userID}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count try-on records: %w", err)
	}

	items, err := r.historyPipeline(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *mongoTryOnRepository) RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.TryOnHistoryItem, error) {
	if limit < 1 {
		limit = 5
	}
	return r.historyPipeline(ctx, bson.M{"user_id": userID}, 0, limit)
}

func (r *mongoTryOnRepository) historyPipeline(ctx context.Context, filter bson.M, skip, limit int) ([]models.TryOnHistoryItem, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         garmentsCollection,
			"localField":   "garment_id",
			"foreignField": "_id",
			"as":           "garment",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$garment", "preserveNullAndEmptyArrays": true}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list try-on history: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.TryOnHistoryItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode try-on history: %w", err)
	}
	return items, nil
}

func (r *mongoTryOnRepository) FindAllByUser(ctx context.Context, userID primitive.ObjectID) ([]models.TryOnRequest, error) {
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find try-on records: %w", err)
	}
	defer cursor.Close(ctx)

	reqs := []models.TryOnRequest{}
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("failed to decode try-on records: %w", err)
	}
	return reqs, nil
}

// MarkCompleted transitions a processing record to completed, setting the
// output URL and duration in the same write. The status filter keeps
// terminal states from ever being overwritten.
func (r *mongoTryOnRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, outputImageURL string, processingMs int64) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.StatusProcessing},
		bson.M{"$set": bson.M{
			"status":           models.StatusCompleted,
			"output_image_url": outputImageURL,
			"processing_time":  processingMs,
			"updated_at":       time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark try-on completed: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("try-on %s is not in processing state", id.Hex())
	}
	return nil
}

// MarkFailed transitions a processing record to failed, setting the error
// description and duration in the same write.
func (r *mongoTryOnRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, errorMessage string, processingMs int64) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.StatusProcessing},
		bson.M{"$set": bson.M{
			"status":          models.StatusFailed,
			"error_message":   errorMessage,
			"processing_time": processingMs,
			"updated_at":      time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark try-on failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("try-on %s is not in processing state", id.Hex())
	}
	return nil
}

func (r *mongoTryOnRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete try-on record: %w", err)
	}
	return nil
}

func (r *mongoTryOnRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to clear try-on history: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoTryOnRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *mongoTryOnRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}})
}

func (r *mongoTryOnRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"status": status})
}

func (r *mongoTryOnRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"user_id": userID})
}

// AverageProcessingTime averages the duration of completed records that
// have one. Returns 0 over an empty store.
func (r *mongoTryOnRepository) AverageProcessingTime(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":          models.StatusCompleted,
			"processing_time": bson.M{"$exists": true},
		}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$processing_time"}}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate processing time: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode processing time: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Avg, nil
}

// PopularGarments ranks garments by try-on count (any status), ties broken
// by garment id ascending so the ordering is deterministic.
func (r *mongoTryOnRepository) PopularGarments(ctx context.Context, limit int) ([]PopularGarment, error) {
	if limit < 1 {
		limit = 10
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$garment_id", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         garmentsCollection,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "garment",
		}}},
		{{Key: "$unwind", Value: "$garment"}},
		{{Key: "$project", Value: bson.M{
			"_id":         "$garment._id",
			"name":        "$garment.name",
			"category":    "$garment.category",
			"image_url":   "$garment.image_url",
			"tryon_count": "$count",
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate popular garments: %w", err)
	}
	defer cursor.Close(ctx)

	rows := []PopularGarment{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode popular garments: %w", err)
	}
	return rows, nil
}

// DailyStats buckets the trailing N days of try-ons by UTC calendar day,
// ascending. Days with no activity do not appear.
func (r *mongoTryOnRepository) DailyStats(ctx context.Context, days int) ([]DailyStat, error) {
	if days < 1 {
		days = 7
	}
	start := time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": start}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$created_at"}},
			"total": bson.M{"$sum": 1},
			"completed": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusCompleted}}, 1, 0},
			}},
			"failed": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusFailed}}, 1, 0},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily stats: %w", err)
	}
	defer cursor.Close(ctx)

	rows := []DailyStat{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode daily stats: %w", err)
	}
	return rows, nil
}
