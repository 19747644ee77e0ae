package services_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylefit/tryon-server/apperrors"
	"github.com/stylefit/tryon-server/inference"
	"github.com/stylefit/tryon-server/models"
	"github.com/stylefit/tryon-server/services"
	"github.com/stylefit/tryon-server/storage"
)

// testImage returns a small valid JPEG.
func testImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func newTryOnFixture() (*services.TryOnService, *MockTryOnRepository, *MockGarmentRepository, *MockLogRepository, *MockBlobStore, *MockInferenceClient) {
	tryons := new(MockTryOnRepository)
	garments := new(MockGarmentRepository)
	logs := new(MockLogRepository)
	blobs := new(MockBlobStore)
	ai := new(MockInferenceClient)
	svc := services.NewTryOnService(tryons, garments, logs, blobs, ai)
	return svc, tryons, garments, logs, blobs, ai
}

func TestTryOnService_Initiate_GarmentNotFound(t *testing.T) {
	svc, tryons, garments, _, _, _ := newTryOnFixture()

	userID := primitive.NewObjectID()
	garmentID := primitive.NewObjectID()

	garments.On("FindActiveByID", mock.Anything, garmentID).Return(nil, nil).Once()

	outcome, err := svc.Initiate(context.Background(), userID, garmentID, testImage(t), services.RequestMeta{})

	assert.Nil(t, outcome)
	assert.True(t, apperrors.IsNotFound(err))
	tryons.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	garments.AssertExpectations(t)
}

func TestTryOnService_Initiate_MissingImage(t *testing.T) {
	svc, tryons, garments, _, blobs, _ := newTryOnFixture()

	garmentID := primitive.NewObjectID()
	garments.On("FindActiveByID", mock.Anything, garmentID).Return(&models.Garment{
		ID: garmentID, Name: "Denim Jacket", Category: "jacket", ImageURL: "https://img/garment.jpg", IsActive: true,
	}, nil).Once()

	outcome, err := svc.Initiate(context.Background(), primitive.NewObjectID(), garmentID, nil, services.RequestMeta{})

	assert.Nil(t, outcome)
	assert.True(t, apperrors.IsValidation(err))
	blobs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	tryons.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTryOnService_Initiate_InvalidImage(t *testing.T) {
	svc, tryons, garments, _, blobs, _ := newTryOnFixture()

	garmentID := primitive.NewObjectID()
	garments.On("FindActiveByID", mock.Anything, garmentID).Return(&models.Garment{
		ID: garmentID, Name: "Denim Jacket", Category: "jacket", ImageURL: "https://img/garment.jpg", IsActive: true,
	}, nil).Once()

	outcome, err := svc.Initiate(context.Background(), primitive.NewObjectID(), garmentID, []byte("not an image"), services.RequestMeta{})

	assert.Nil(t, outcome)
	assert.True(t, apperrors.IsValidation(err))
	blobs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	tryons.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTryOnService_Initiate_Success(t *testing.T) {
	svc, tryons, garments, logs, blobs, ai := newTryOnFixture()

	userID := primitive.NewObjectID()
	garmentID := primitive.NewObjectID()
	recordID := primitive.NewObjectID()

	garments.On("FindActiveByID", mock.Anything, garmentID).Return(&models.Garment{
		ID: garmentID, Name: "Blue Shirt", Category: "shirt", ImageURL: "https://img/shirt.jpg", IsActive: true,
	}, nil).Once()

	blobs.On("Upload", mock.Anything, mock.Anything, services.FolderTryOnInput, "image/jpeg").
		Return(storage.UploadResult{URL: "https://img/tryon/input/a.jpg", Path: "tryon/input/a.jpg"}, nil).Once()

	tryons.On("Create", mock.Anything, mock.AnythingOfType("*models.TryOnRequest")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.TryOnRequest).ID = recordID
		}).Return(nil).Once()

	ai.On("Compose", mock.Anything, "https://img/tryon/input/a.jpg", "https://img/shirt.jpg").
		Return(inference.Result{OK: true, Image: []byte{0xff, 0xd8}, Duration: 2 * time.Second}).Once()

	blobs.On("Upload", mock.Anything, mock.Anything, services.FolderTryOnOutput, "image/jpeg").
		Return(storage.UploadResult{URL: "https://img/tryon/output/b.jpg", Path: "tryon/output/b.jpg"}, nil).Once()

	tryons.On("MarkCompleted", mock.Anything, recordID, "https://img/tryon/output/b.jpg", int64(2000)).Return(nil).Once()
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	outcome, err := svc.Initiate(context.Background(), userID, garmentID, testImage(t), services.RequestMeta{IP: "10.0.0.1"})

	assert.NoError(t, err)
	assert.True(t, outcome.Completed)
	assert.Equal(t, models.StatusCompleted, outcome.Request.Status)
	assert.Equal(t, int64(2000), outcome.Request.ProcessingTime)
	assert.Equal(t, "https://img/tryon/output/b.jpg", outcome.Request.OutputImageURL)
	assert.Equal(t, "Blue Shirt", outcome.Garment.Name)
	tryons.AssertExpectations(t)
	blobs.AssertExpectations(t)
	ai.AssertExpectations(t)
}

func TestTryOnService_Initiate_InferenceFailure(t *testing.T) {
	svc, tryons, garments, logs, blobs, ai := newTryOnFixture()

	garmentID := primitive.NewObjectID()
	recordID := primitive.NewObjectID()

	garments.On("FindActiveByID", mock.Anything, garmentID).Return(&models.Garment{
		ID: garmentID, Name: "Blue Shirt", Category: "shirt", ImageURL: "https://img/shirt.jpg", IsActive: true,
	}, nil).Once()
	blobs.On("Upload", mock.Anything, mock.Anything, services.FolderTryOnInput, "image/jpeg").
		Return(storage.UploadResult{URL: "https://img/tryon/input/a.jpg", Path: "tryon/input/a.jpg"}, nil).Once()
	tryons.On("Create", mock.Anything, mock.AnythingOfType("*models.TryOnRequest")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.TryOnRequest).ID = recordID
		}).Return(nil).Once()
	ai.On("Compose", mock.Anything, mock.Anything, mock.Anything).
		Return(inference.Result{OK: false, Reason: "model timeout", Duration: 90 * time.Second}).Once()
	tryons.On("MarkFailed", mock.Anything, recordID, "model timeout", int64(90000)).Return(nil).Once()
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	outcome, err := svc.Initiate(context.Background(), primitive.NewObjectID(), garmentID, testImage(t), services.RequestMeta{})

	// A failed try-on is a modeled outcome, not an error.
	assert.NoError(t, err)
	assert.False(t, outcome.Completed)
	assert.Equal(t, "model timeout", outcome.FailureReason)
	assert.Equal(t, models.StatusFailed, outcome.Request.Status)
	assert.Equal(t, "model timeout", outcome.Request.ErrorMessage)
	assert.Equal(t, recordID, outcome.Request.ID)
	tryons.AssertExpectations(t)
}

func TestTryOnService_Initiate_InputUploadFailure(t *testing.T) {
	svc, tryons, garments, _, blobs, _ := newTryOnFixture()

	garmentID := primitive.NewObjectID()
	garments.On("FindActiveByID", mock.Anything, garmentID).Return(&models.Garment{
		ID: garmentID, Name: "Blue Shirt", Category: "shirt", ImageURL: "https://img/shirt.jpg", IsActive: true,
	}, nil).Once()
	blobs.On("Upload", mock.Anything, mock.Anything, services.FolderTryOnInput, "image/jpeg").
		Return(storage.UploadResult{}, errors.New("s3 unavailable")).Once()

	outcome, err := svc.Initiate(context.Background(), primitive.NewObjectID(), garmentID, testImage(t), services.RequestMeta{})

	assert.Nil(t, outcome)
	assert.True(t, apperrors.IsExternal(err))
	tryons.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTryOnService_Initiate_CreateFailureReclaimsBlob(t *testing.T) {
	svc, tryons, garments, _, blobs, _ := newTryOnFixture()

	garmentID := primitive.NewObjectID()
	garments.On("FindActiveByID", mock.Anything, garmentID).Return(&models.Garment{
		ID: garmentID, Name: "Blue Shirt", Category: "shirt", ImageURL: "https://img/shirt.jpg", IsActive: true,
	}, nil).Once()
	blobs.On("Upload", mock.Anything, mock.Anything, services.FolderTryOnInput, "image/jpeg").
		Return(storage.UploadResult{URL: "https://img/tryon/input/a.jpg", Path: "tryon/input/a.jpg"}, nil).Once()
	tryons.On("Create", mock.Anything, mock.Anything).Return(errors.New("write concern error")).Once()
	blobs.On("Delete", mock.Anything, "tryon/input/a.jpg").Return(nil).Once()

	outcome, err := svc.Initiate(context.Background(), primitive.NewObjectID(), garmentID, testImage(t), services.RequestMeta{})

	assert.Nil(t, outcome)
	assert.True(t, apperrors.IsExternal(err))
	blobs.AssertExpectations(t)
}

func TestTryOnService_Initiate_OutputUploadFailureMarksFailed(t *testing.T) {
	svc, tryons, garments, logs, blobs, ai := newTryOnFixture()

	garmentID := primitive.NewObjectID()
	recordID := primitive.NewObjectID()

	garments.On("FindActiveByID", mock.Anything, garmentID).Return(&models.Garment{
		ID: garmentID, Name: "Blue Shirt", Category: "shirt", ImageURL: "https://img/shirt.jpg", IsActive: true,
	}, nil).Once()
	blobs.On("Upload", mock.Anything, mock.Anything, services.FolderTryOnInput, "image/jpeg").
		Return(storage.UploadResult{URL: "https://img/tryon/input/a.jpg", Path: "tryon/input/a.jpg"}, nil).Once()
	tryons.On("Create", mock.Anything, mock.AnythingOfType("*models.TryOnRequest")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.TryOnRequest).ID = recordID
		}).Return(nil).Once()
	ai.On("Compose", mock.Anything, mock.Anything, mock.Anything).
		Return(inference.Result{OK: true, Image: []byte{0xff, 0xd8}, Duration: time.Second}).Once()
	blobs.On("Upload", mock.Anything, mock.Anything, services.FolderTryOnOutput, "image/jpeg").
		Return(storage.UploadResult{}, errors.New("s3 unavailable")).Once()
	tryons.On("MarkFailed", mock.Anything, recordID, "failed to store output image", int64(1000)).Return(nil).Once()
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	outcome, err := svc.Initiate(context.Background(), primitive.NewObjectID(), garmentID, testImage(t), services.RequestMeta{})

	assert.NoError(t, err)
	assert.False(t, outcome.Completed)
	assert.Equal(t, models.StatusFailed, outcome.Request.Status)
	tryons.AssertExpectations(t)
}

func TestTryOnService_Get_JoinsGarment(t *testing.T) {
	svc, tryons, garments, _, _, _ := newTryOnFixture()

	id := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	garmentID := primitive.NewObjectID()

	tryons.On("FindByIDAndUser", mock.Anything, id, userID).Return(&models.TryOnRequest{
		ID: id, UserID: userID, GarmentID: garmentID, Status: models.StatusCompleted,
	}, nil).Once()
	garments.On("FindByID", mock.Anything, garmentID).Return(&models.Garment{
		ID: garmentID, Name: "Red Saree", Category: "saree", ImageURL: "https://img/saree.jpg",
	}, nil).Once()

	item, err := svc.Get(context.Background(), id, userID)

	assert.NoError(t, err)
	assert.Equal(t, "Red Saree", item.Garment.Name)
	assert.Equal(t, models.StatusCompleted, item.Status)
}

func TestTryOnService_Get_NotFound(t *testing.T) {
	svc, tryons, _, _, _, _ := newTryOnFixture()

	id := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	tryons.On("FindByIDAndUser", mock.Anything, id, userID).Return(nil, nil).Once()

	item, err := svc.Get(context.Background(), id, userID)

	assert.Nil(t, item)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTryOnService_DeleteOne_NotFound(t *testing.T) {
	svc, tryons, _, _, blobs, _ := newTryOnFixture()

	id := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	tryons.On("FindByIDAndUser", mock.Anything, id, userID).Return(nil, nil).Once()

	err := svc.DeleteOne(context.Background(), id, userID)

	assert.True(t, apperrors.IsNotFound(err))
	blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	tryons.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestTryOnService_DeleteOne_RemovesBlobs(t *testing.T) {
	svc, tryons, _, _, blobs, _ := newTryOnFixture()

	id := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	tryons.On("FindByIDAndUser", mock.Anything, id, userID).Return(&models.TryOnRequest{
		ID:             id,
		UserID:         userID,
		InputImageURL:  "https://img/tryon/input/a.jpg",
		OutputImageURL: "https://img/tryon/output/b.jpg",
		Status:         models.StatusCompleted,
	}, nil).Once()
	blobs.On("URLToPath", "https://img/tryon/input/a.jpg").Return("tryon/input/a.jpg").Once()
	blobs.On("URLToPath", "https://img/tryon/output/b.jpg").Return("tryon/output/b.jpg").Once()
	blobs.On("Delete", mock.Anything, "tryon/input/a.jpg").Return(nil).Once()
	blobs.On("Delete", mock.Anything, "tryon/output/b.jpg").Return(nil).Once()
	tryons.On("DeleteByID", mock.Anything, id).Return(nil).Once()

	err := svc.DeleteOne(context.Background(), id, userID)

	assert.NoError(t, err)
	blobs.AssertExpectations(t)
	tryons.AssertExpectations(t)
}

func TestTryOnService_DeleteOne_BlobFailureDoesNotBlockDeletion(t *testing.T) {
	svc, tryons, _, _, blobs, _ := newTryOnFixture()

	id := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	tryons.On("FindByIDAndUser", mock.Anything, id, userID).Return(&models.TryOnRequest{
		ID:            id,
		UserID:        userID,
		InputImageURL: "https://img/tryon/input/a.jpg",
		Status:        models.StatusFailed,
	}, nil).Once()
	blobs.On("URLToPath", "https://img/tryon/input/a.jpg").Return("tryon/input/a.jpg").Once()
	blobs.On("URLToPath", "").Return("").Once()
	blobs.On("Delete", mock.Anything, "tryon/input/a.jpg").Return(errors.New("s3 unavailable")).Once()
	tryons.On("DeleteByID", mock.Anything, id).Return(nil).Once()

	err := svc.DeleteOne(context.Background(), id, userID)

	assert.NoError(t, err)
	tryons.AssertExpectations(t)
}

func TestTryOnService_ClearAll_EmptyHistory(t *testing.T) {
	svc, tryons, _, _, _, _ := newTryOnFixture()

	userID := primitive.NewObjectID()
	tryons.On("FindAllByUser", mock.Anything, userID).Return([]models.TryOnRequest{}, nil).Once()
	tryons.On("DeleteByUser", mock.Anything, userID).Return(int64(0), nil).Once()

	deleted, err := svc.ClearAll(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}
