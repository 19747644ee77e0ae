package services

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylefit/tryon-server/models"
	"github.com/stylefit/tryon-server/repositories"
)

// UserStats is the user slice of the system snapshot. Admin accounts are
// excluded from all three counts.
type UserStats struct {
	Total        int64 `json:"total"`
	NewToday     int64 `json:"newToday"`
	NewThisMonth int64 `json:"newThisMonth"`
}

// GarmentStats is the catalog slice of the system snapshot.
type GarmentStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

// TryOnStats is the try-on slice of the system snapshot. SuccessRate is a
// percentage rounded to two decimals, 0 when there are no try-ons.
type TryOnStats struct {
	Total             int64   `json:"total"`
	Today             int64   `json:"today"`
	ThisMonth         int64   `json:"thisMonth"`
	Successful        int64   `json:"successful"`
	Failed            int64   `json:"failed"`
	SuccessRate       float64 `json:"successRate"`
	AvgProcessingTime float64 `json:"avgProcessingTime"`
}

// SystemSnapshot is the full system-wide analytics snapshot.
type SystemSnapshot struct {
	Users    UserStats    `json:"users"`
	Garments GarmentStats `json:"garments"`
	TryOns   TryOnStats   `json:"tryOns"`
}

// UserActivity summarizes one user's footprint for the admin view.
type UserActivity struct {
	TryOnCount     int64                     `json:"tryOnCount"`
	FavoritesCount int                       `json:"favoritesCount"`
	RecentTryOns   []models.TryOnHistoryItem `json:"recentTryOns"`
	RecentLogs     []models.AuditLogEntry    `json:"recentLogs"`
}

// AnalyticsService computes read-only derived statistics over the record
// store. Nothing is cached; every call recomputes. Every operation
// tolerates an empty store and returns zeros rather than erroring.
type AnalyticsService struct {
	users    repositories.UserRepository
	garments repositories.GarmentRepository
	tryons   repositories.TryOnRepository
	logs     repositories.LogRepository
	now      func() time.Time
}

func NewAnalyticsService(
	users repositories.UserRepository,
	garments repositories.GarmentRepository,
	tryons repositories.TryOnRepository,
	logs repositories.LogRepository,
) *AnalyticsService {
	return &AnalyticsService{
		users:    users,
		garments: garments,
		tryons:   tryons,
		logs:     logs,
		now:      time.Now,
	}
}

// SystemAnalytics computes the system snapshot: counts partitioned by
// time window (today, this calendar month, all-time) and by outcome.
func (s *AnalyticsService) SystemAnalytics(ctx context.Context) (*SystemSnapshot, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var snap SystemSnapshot
	var err error

	if snap.Users.Total, err = s.users.CountByRole(ctx, models.RoleUser); err != nil {
		return nil, err
	}
	if snap.Users.NewToday, err = s.users.CountByRoleCreatedSince(ctx, models.RoleUser, today); err != nil {
		return nil, err
	}
	if snap.Users.NewThisMonth, err = s.users.CountByRoleCreatedSince(ctx, models.RoleUser, thisMonth); err != nil {
		return nil, err
	}

	if snap.Garments.Total, err = s.garments.Count(ctx); err != nil {
		return nil, err
	}
	if snap.Garments.Active, err = s.garments.CountActive(ctx); err != nil {
		return nil, err
	}

	if snap.TryOns.Total, err = s.tryons.Count(ctx); err != nil {
		return nil, err
	}
	if snap.TryOns.Today, err = s.tryons.CountSince(ctx, today); err != nil {
		return nil, err
	}
	if snap.TryOns.ThisMonth, err = s.tryons.CountSince(ctx, thisMonth); err != nil {
		return nil, err
	}
	if snap.TryOns.Successful, err = s.tryons.CountByStatus(ctx, models.StatusCompleted); err != nil {
		return nil, err
	}
	if snap.TryOns.Failed, err = s.tryons.CountByStatus(ctx, models.StatusFailed); err != nil {
		return nil, err
	}
	if snap.TryOns.AvgProcessingTime, err = s.tryons.AverageProcessingTime(ctx); err != nil {
		return nil, err
	}

	snap.TryOns.SuccessRate = SuccessRate(snap.TryOns.Successful, snap.TryOns.Total)
	return &snap, nil
}

// PopularGarments returns the top-N garments by try-on count, any status.
func (s *AnalyticsService) PopularGarments(ctx context.Context, limit int) ([]repositories.PopularGarment, error) {
	return s.tryons.PopularGarments(ctx, limit)
}

// DailyTrend returns per-day try-on counts over the trailing N days.
func (s *AnalyticsService) DailyTrend(ctx context.Context, days int) ([]repositories.DailyStat, error) {
	return s.tryons.DailyStats(ctx, days)
}

// CategoryDistribution counts active garments per category.
func (s *AnalyticsService) CategoryDistribution(ctx context.Context) ([]repositories.CategoryCount, error) {
	return s.garments.CategoryDistribution(ctx)
}

// UserActivity summarizes one user's try-on count, favorites and recent
// records.
func (s *AnalyticsService) UserActivity(ctx context.Context, userID primitive.ObjectID) (*UserActivity, error) {
	activity := &UserActivity{}
	var err error

	if activity.TryOnCount, err = s.tryons.CountByUser(ctx, userID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		activity.FavoritesCount = len(user.Favorites)
	}

	if activity.RecentTryOns, err = s.tryons.RecentByUser(ctx, userID, 5); err != nil {
		return nil, err
	}
	if activity.RecentLogs, err = s.logs.RecentByUser(ctx, userID, 20); err != nil {
		return nil, err
	}
	return activity, nil
}

// SuccessRate converts completed/total into a percentage rounded to two
// decimals. A zero total yields 0, never a division by zero.
func SuccessRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	return math.Round(rate*100) / 100
}
