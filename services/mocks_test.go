package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylefit/tryon-server/inference"
	"github.com/stylefit/tryon-server/models"
	"github.com/stylefit/tryon-server/repositories"
	"github.com/stylefit/tryon-server/storage"
)

// MockTryOnRepository is a mock implementation of repositories.TryOnRepository
type MockTryOnRepository struct {
	mock.Mock
}

func (m *MockTryOnRepository) Create(ctx context.Context, req *models.TryOnRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockTryOnRepository) FindByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) (*models.TryOnRequest, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TryOnRequest), args.Error(1)
}

func (m *MockTryOnRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.TryOnHistoryItem, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).([]models.TryOnHistoryItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockTryOnRepository) FindAllByUser(ctx context.Context, userID primitive.ObjectID) ([]models.TryOnRequest, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.TryOnRequest), args.Error(1)
}

func (m *MockTryOnRepository) RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.TryOnHistoryItem, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.TryOnHistoryItem), args.Error(1)
}

func (m *MockTryOnRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, outputImageURL string, processingMs int64) error {
	args := m.Called(ctx, id, outputImageURL, processingMs)
	return args.Error(0)
}

func (m *MockTryOnRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, errorMessage string, processingMs int64) error {
	args := m.Called(ctx, id, errorMessage, processingMs)
	return args.Error(0)
}

func (m *MockTryOnRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTryOnRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTryOnRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTryOnRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTryOnRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTryOnRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTryOnRepository) AverageProcessingTime(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockTryOnRepository) PopularGarments(ctx context.Context, limit int) ([]repositories.PopularGarment, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]repositories.PopularGarment), args.Error(1)
}

func (m *MockTryOnRepository) DailyStats(ctx context.Context, days int) ([]repositories.DailyStat, error) {
	args := m.Called(ctx, days)
	return args.Get(0).([]repositories.DailyStat), args.Error(1)
}

// MockGarmentRepository is a mock implementation of repositories.GarmentRepository
type MockGarmentRepository struct {
	mock.Mock
}

func (m *MockGarmentRepository) Create(ctx context.Context, garment *models.Garment) error {
	args := m.Called(ctx, garment)
	return args.Error(0)
}

func (m *MockGarmentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Garment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Garment), args.Error(1)
}

func (m *MockGarmentRepository) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.Garment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Garment), args.Error(1)
}

func (m *MockGarmentRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockGarmentRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGarmentRepository) List(ctx context.Context, opts repositories.ListGarmentsOptions) ([]models.Garment, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]models.Garment), args.Get(1).(int64), args.Error(2)
}

func (m *MockGarmentRepository) FindSummaries(ctx context.Context, ids []primitive.ObjectID) ([]models.GarmentSummary, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.GarmentSummary), args.Error(1)
}

func (m *MockGarmentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGarmentRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGarmentRepository) CategoryDistribution(ctx context.Context) ([]repositories.CategoryCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repositories.CategoryCount), args.Error(1)
}

func (m *MockGarmentRepository) DistinctColors(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error) {
	args := m.Called(ctx, hashedToken, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockUserRepository) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, opts repositories.ListUsersOptions) ([]models.User, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) AddFavorite(ctx context.Context, userID, garmentID primitive.ObjectID) error {
	args := m.Called(ctx, userID, garmentID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveFavorite(ctx context.Context, userID, garmentID primitive.ObjectID) error {
	args := m.Called(ctx, userID, garmentID)
	return args.Error(0)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByRoleCreatedSince(ctx context.Context, role string, since time.Time) (int64, error) {
	args := m.Called(ctx, role, since)
	return args.Get(0).(int64), args.Error(1)
}

// MockLogRepository is a mock implementation of repositories.LogRepository
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Append(ctx context.Context, entry models.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLogRepository) List(ctx context.Context, opts repositories.ListLogsOptions) ([]models.AuditLogEntry, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]models.AuditLogEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockLogRepository) RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.AuditLogEntry, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.AuditLogEntry), args.Error(1)
}

// MockBlobStore is a mock implementation of services.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, data []byte, folder, contentType string) (storage.UploadResult, error) {
	args := m.Called(ctx, data, folder, contentType)
	return args.Get(0).(storage.UploadResult), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockBlobStore) URLToPath(url string) string {
	args := m.Called(url)
	return args.String(0)
}

// MockInferenceClient is a mock implementation of services.InferenceClient
type MockInferenceClient struct {
	mock.Mock
}

func (m *MockInferenceClient) Compose(ctx context.Context, personImageURL, garmentImageURL string) inference.Result {
	args := m.Called(ctx, personImageURL, garmentImageURL)
	return args.Get(0).(inference.Result)
}
