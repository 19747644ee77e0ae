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

// ListGarmentsOptions filters the garment catalog listing.
type ListGarmentsOptions struct {
	Category        string
	Gender          string
	Color           string // case-insensitive substring
	Fabric          string // case-insensitive substring
	Search          string // case-insensitive substring over name and description
	IncludeInactive bool   // admin listing only
	Active          *bool  // explicit active filter for admin listing
	Page            int
	Limit           int
}

// CategoryCount is one row of the category distribution.
type CategoryCount struct {
	Category string `bson:"_id" json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

// GarmentRepository persists the catalog. Lookups that miss return (nil, nil).
type GarmentRepository interface {
	Create(ctx context.Context, garment *models.Garment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Garment, error)
	FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.Garment, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, opts ListGarmentsOptions) ([]models.Garment, int64, error)
	FindSummaries(ctx context.Context, ids []primitive.ObjectID) ([]models.GarmentSummary, error)
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CategoryDistribution(ctx context.Context) ([]CategoryCount, error)
	DistinctColors(ctx context.Context) ([]string, error)
}

type mongoGarmentRepository struct {
	col *mongo.Collection
}

// NewGarmentRepository returns the MongoDB-backed GarmentRepository.
func NewGarmentRepository(db *mongo.Database) GarmentRepository {
	return &mongoGarmentRepository{col: db.Collection(garmentsCollection)}
}

func (r *mongoGarmentRepository) Create(ctx context.Context, garment *models.Garment) error {
	now := time.Now()
	garment.CreatedAt = now
	garment.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, garment)
	if err != nil {
		return fmt.Errorf("failed to create garment: %w", err)
	}
	garment.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoGarmentRepository) findOne(ctx context.Context, filter bson.M) (*models.Garment, error) {
	var garment models.Garment
	err := r.col.FindOne(ctx, filter).Decode(&garment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find garment: %w", err)
	}
	return &garment, nil
}

func (r *mongoGarmentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Garment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoGarmentRepository) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.Garment, error) {
	return r.findOne(ctx, bson.M{"_id": id, "is_active": true})
}

func (r *mongoGarmentRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now()
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update garment: %w", err)
	}
	return nil
}

func (r *mongoGarmentRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete garment: %w", err)
	}
	return nil
}

func (r *mongoGarmentRepository) List(ctx context.Context, opts ListGarmentsOptions) ([]models.Garment, int64, error) {
	filter := bson.M{}
	if !opts.IncludeInactive {
		filter["is_active"] = true
	} else if opts.Active != nil {
		filter["is_active"] = *opts.Active
	}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if opts.Gender != "" {
		filter["gender"] = opts.Gender
	}
	if opts.Color != "" {
		filter["color"] = primitive.Regex{Pattern: opts.Color, Options: "i"}
	}
	if opts.Fabric != "" {
		filter["fabric"] = primitive.Regex{Pattern: opts.Fabric, Options: "i"}
	}
	if opts.Search != "" {
		re := primitive.Regex{Pattern: opts.Search, Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"description": re}}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count garments: %w", err)
	}

	cursor, err := r.col.Find(ctx, filter, paginate(opts.Page, opts.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list garments: %w", err)
	}
	defer cursor.Close(ctx)

	garments := []models.Garment{}
	if err := cursor.All(ctx, &garments); err != nil {
		return nil, 0, fmt.Errorf("failed to decode garments: %w", err)
	}
	return garments, total, nil
}

func (r *mongoGarmentRepository) FindSummaries(ctx context.Context, ids []primitive.ObjectID) ([]models.GarmentSummary, error) {
	if len(ids) == 0 {
		return []models.GarmentSummary{}, nil
	}

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find garments: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := []models.GarmentSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode garments: %w", err)
	}
	return summaries, nil
}

func (r *mongoGarmentRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *mongoGarmentRepository) CountActive(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"is_active": true})
}

// CategoryDistribution counts active garments per category, most popular
// first.
func (r *mongoGarmentRepository) CategoryDistribution(ctx context.Context) ([]CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer cursor.Close(ctx)

	rows := []CategoryCount{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode category distribution: %w", err)
	}
	return rows, nil
}

func (r *mongoGarmentRepository) DistinctColors(ctx context.Context) ([]string, error) {
	values, err := r.col.Distinct(ctx, "color", bson.M{"is_active": true, "color": bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}

	colors := []string{}
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			colors = append(colors, s)
		}
	}
	return colors, nil
}
