package services

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylefit/tryon-server/apperrors"
	"github.com/stylefit/tryon-server/inference"
	"github.com/stylefit/tryon-server/models"
	"github.com/stylefit/tryon-server/repositories"
	"github.com/stylefit/tryon-server/storage"
)

// Blob folders used by the orchestrator and the handlers above it.
const (
	FolderTryOnInput  = "tryon/input"
	FolderTryOnOutput = "tryon/output"
	FolderGarments    = "garments"
	FolderProfiles    = "profiles"
)

// BlobStore is the object-storage contract the orchestrator needs.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, folder, contentType string) (storage.UploadResult, error)
	Delete(ctx context.Context, path string) error
	URLToPath(url string) string
}

// InferenceClient is the composition-model contract. Compose never
// returns an error; failures arrive as a !OK Result.
type InferenceClient interface {
	Compose(ctx context.Context, personImageURL, garmentImageURL string) inference.Result
}

// RequestMeta carries the best-effort caller identity recorded in audit
// entries.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// TryOnOutcome is the terminal, user-visible result of one Initiate call.
// A failed try-on is a modeled outcome, not an error: the record exists
// in failed state and stays queryable.
type TryOnOutcome struct {
	Completed     bool
	Request       *models.TryOnRequest
	Garment       *models.GarmentSummary
	FailureReason string
}

// TryOnService owns the TryOnRequest lifecycle: it is the only writer of
// a record's status after creation. Each Initiate call is one logical
// attempt; there is no retry and no idempotency key, so two identical
// calls produce two independent records.
type TryOnService struct {
	tryons   repositories.TryOnRepository
	garments repositories.GarmentRepository
	logs     repositories.LogRepository
	blobs    BlobStore
	ai       InferenceClient
}

func NewTryOnService(
	tryons repositories.TryOnRepository,
	garments repositories.GarmentRepository,
	logs repositories.LogRepository,
	blobs BlobStore,
	ai InferenceClient,
) *TryOnService {
	return &TryOnService{
		tryons:   tryons,
		garments: garments,
		logs:     logs,
		blobs:    blobs,
		ai:       ai,
	}
}

// Initiate drives one try-on job from submission to a terminal state.
//
// Rejections before the first durable write surface as typed errors with
// no side effects. Once the record exists in processing state, every
// subsequent failure is absorbed into the state machine: the record moves
// to failed and the outcome reports the reason without an error.
func (s *TryOnService) Initiate(ctx context.Context, userID, garmentID primitive.ObjectID, image []byte, meta RequestMeta) (*TryOnOutcome, error) {
	garment, err := s.garments.FindActiveByID(ctx, garmentID)
	if err != nil {
		return nil, err
	}
	if garment == nil {
		return nil, apperrors.NotFound("Garment not found")
	}

	if len(image) == 0 {
		return nil, apperrors.Validation("Please upload your photo")
	}

	normalized, err := storage.NormalizeTryOnImage(image)
	if err != nil {
		return nil, apperrors.Validation("Uploaded file is not a valid image")
	}

	input, err := s.blobs.Upload(ctx, normalized, FolderTryOnInput, "image/jpeg")
	if err != nil {
		return nil, apperrors.External("Failed to store input image", err)
	}

	record := &models.TryOnRequest{
		UserID:        userID,
		GarmentID:     garmentID,
		InputImageURL: input.URL,
		Status:        models.StatusProcessing,
	}
	if err := s.tryons.Create(ctx, record); err != nil {
		// The input blob is already durable; reclaim it so a failed
		// create leaves nothing behind.
		if delErr := s.blobs.Delete(ctx, input.Path); delErr != nil {
			log.Printf("Failed to reclaim input image %s: %v", input.Path, delErr)
		}
		return nil, apperrors.External("Failed to create try-on record", err)
	}

	s.audit(ctx, models.ActionTryOnRequest, userID, meta, map[string]interface{}{
		"tryOnId":   record.ID.Hex(),
		"garmentId": garmentID.Hex(),
	})

	result := s.ai.Compose(ctx, input.URL, garment.ImageURL)
	processingMs := result.Duration.Milliseconds()

	if result.OK {
		output, upErr := s.blobs.Upload(ctx, result.Image, FolderTryOnOutput, "image/jpeg")
		if upErr != nil {
			// Storing the composite failed; the attempt is recorded as a
			// failed try-on, same as an inference failure.
			return s.fail(ctx, record, garment, "failed to store output image", processingMs, meta)
		}

		if err := s.tryons.MarkCompleted(ctx, record.ID, output.URL, processingMs); err != nil {
			return nil, err
		}
		record.Status = models.StatusCompleted
		record.OutputImageURL = output.URL
		record.ProcessingTime = processingMs

		s.audit(ctx, models.ActionTryOnComplete, userID, meta, map[string]interface{}{
			"tryOnId":        record.ID.Hex(),
			"processingTime": processingMs,
		})

		return &TryOnOutcome{
			Completed: true,
			Request:   record,
			Garment:   summaryOf(garment),
		}, nil
	}

	return s.fail(ctx, record, garment, result.Reason, processingMs, meta)
}

func (s *TryOnService) fail(ctx context.Context, record *models.TryOnRequest, garment *models.Garment, reason string, processingMs int64, meta RequestMeta) (*TryOnOutcome, error) {
	if err := s.tryons.MarkFailed(ctx, record.ID, reason, processingMs); err != nil {
		return nil, err
	}
	record.Status = models.StatusFailed
	record.ErrorMessage = reason
	record.ProcessingTime = processingMs

	s.audit(ctx, models.ActionTryOnFailed, record.UserID, meta, map[string]interface{}{
		"tryOnId": record.ID.Hex(),
		"error":   reason,
	})

	return &TryOnOutcome{
		Completed:     false,
		Request:       record,
		Garment:       summaryOf(garment),
		FailureReason: reason,
	}, nil
}

// History returns one page of the caller's try-on records, newest first.
func (s *TryOnService) History(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.TryOnHistoryItem, int64, error) {
	return s.tryons.ListByUser(ctx, userID, page, limit)
}

// Get returns a single record owned by the caller, joined with its
// garment summary.
func (s *TryOnService) Get(ctx context.Context, id, userID primitive.ObjectID) (*models.TryOnHistoryItem, error) {
	record, err := s.tryons.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NotFound("Try-on result not found")
	}

	item := &models.TryOnHistoryItem{TryOnRequest: *record}
	garment, err := s.garments.FindByID(ctx, record.GarmentID)
	if err == nil && garment != nil {
		item.Garment = summaryOf(garment)
	}
	return item, nil
}

// DeleteOne removes one record owned by the caller along with its blobs.
// Blob deletion is best effort; the record goes away regardless.
func (s *TryOnService) DeleteOne(ctx context.Context, id, userID primitive.ObjectID) error {
	record, err := s.tryons.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if record == nil {
		return apperrors.NotFound("Try-on result not found")
	}

	s.deleteBlobs(ctx, record)
	return s.tryons.DeleteByID(ctx, record.ID)
}

// ClearAll removes every record owned by the caller. A user with no
// records gets a successful no-op.
func (s *TryOnService) ClearAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	records, err := s.tryons.FindAllByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	for i := range records {
		s.deleteBlobs(ctx, &records[i])
	}
	return s.tryons.DeleteByUser(ctx, userID)
}

func (s *TryOnService) deleteBlobs(ctx context.Context, record *models.TryOnRequest) {
	for _, url := range []string{record.InputImageURL, record.OutputImageURL} {
		path := s.blobs.URLToPath(url)
		if path == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, path); err != nil {
			log.Printf("Failed to delete try-on blob %s: %v", path, err)
		}
	}
}

// audit appends an entry best-effort: a logging failure never aborts the
// operation it describes.
func (s *TryOnService) audit(ctx context.Context, action string, userID primitive.ObjectID, meta RequestMeta, details map[string]interface{}) {
	entry := models.AuditLogEntry{
		Action:    action,
		UserID:    &userID,
		Details:   details,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		log.Printf("Failed to append audit entry %s: %v", action, err)
	}
}

func summaryOf(g *models.Garment) *models.GarmentSummary {
	return &models.GarmentSummary{
		ID:       g.ID,
		Name:     g.Name,
		Category: g.Category,
		ImageURL: g.ImageURL,
	}
}
