package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/stylefit/tryon-server/models"
	"github.com/stylefit/tryon-server/repositories"
	"github.com/stylefit/tryon-server/services"
	"github.com/stylefit/tryon-server/storage"
	"github.com/stylefit/tryon-server/utils"
)

// UserHandler serves profile, favorites and account management.
type UserHandler struct {
	users    repositories.UserRepository
	garments repositories.GarmentRepository
	logs     repositories.LogRepository
	blobs    services.BlobStore
	tryons   *services.TryOnService
}

func NewUserHandler(
	users repositories.UserRepository,
	garments repositories.GarmentRepository,
	logs repositories.LogRepository,
	blobs services.BlobStore,
	tryons *services.TryOnService,
) *UserHandler {
	return &UserHandler{users: users, garments: garments, logs: logs, blobs: blobs, tryons: tryons}
}

// Profile handles GET /api/user/profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ok(w, UserFromContext(r.Context()))
}

type updateProfileRequest struct {
	Name     *string          `json:"name"`
	BodyInfo *models.BodyInfo `json:"bodyInfo"`
}

// UpdateProfile handles PUT /api/user/profile. Only the provided fields
// change.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 || len(name) > 50 {
			utils.RespondError(w, http.StatusBadRequest, "Name must be 2-50 characters")
			return
		}
		set["name"] = name
		user.Name = name
	}
	if req.BodyInfo != nil {
		if req.BodyInfo.Gender != "" && !models.ValidProfileGender(req.BodyInfo.Gender) {
			utils.RespondError(w, http.StatusBadRequest, "Invalid gender value")
			return
		}
		if req.BodyInfo.BodyType != "" && !models.ValidBodyType(req.BodyInfo.BodyType) {
			utils.RespondError(w, http.StatusBadRequest, "Invalid body type value")
			return
		}
		if req.BodyInfo.Height < 0 || req.BodyInfo.Height > 300 {
			utils.RespondError(w, http.StatusBadRequest, "Height must be between 0 and 300 cm")
			return
		}
		set["body_info"] = req.BodyInfo
		user.BodyInfo = req.BodyInfo
	}

	if len(set) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := h.users.UpdateByID(r.Context(), user.ID, set); err != nil {
		writeError(w, err)
		return
	}

	appendAudit(r.Context(), h.logs, r, models.ActionProfileUpdate, &user.ID, nil)
	ok(w, user)
}

// UploadProfileImage handles POST /api/user/profile-image with a
// multipart "image" field. Replaces the previous image blob when one
// exists.
func (h *UserHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	data, err := formFileBytes(r, "image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if len(data) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Please upload an image")
		return
	}

	normalized, err := storage.NormalizeImage(data)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Uploaded file is not a valid image")
		return
	}

	uploaded, err := h.blobs.Upload(r.Context(), normalized, services.FolderProfiles, "image/jpeg")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.UpdateByID(r.Context(), user.ID, bson.M{"profile_image": uploaded.URL}); err != nil {
		writeError(w, err)
		return
	}

	if old := h.blobs.URLToPath(user.ProfileImage); old != "" {
		h.blobs.Delete(r.Context(), old)
	}
	user.ProfileImage = uploaded.URL

	appendAudit(r.Context(), h.logs, r, models.ActionProfileImageUpload, &user.ID, nil)
	ok(w, map[string]interface{}{"profileImage": uploaded.URL})
}

// ChangePassword handles PUT /api/user/change-password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.NewPassword) < 6 {
		utils.RespondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.UpdateByID(r.Context(), user.ID, bson.M{"password": string(hashed)}); err != nil {
		writeError(w, err)
		return
	}

	okMessage(w, "Password changed successfully")
}

// DeleteAccount handles DELETE /api/user/account. Removes the account
// along with its try-on history and profile image.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if user.IsAdmin() {
		utils.RespondError(w, http.StatusForbidden, "Admin accounts cannot be deleted")
		return
	}

	if _, err := h.tryons.ClearAll(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}
	if old := h.blobs.URLToPath(user.ProfileImage); old != "" {
		h.blobs.Delete(r.Context(), old)
	}
	if err := h.users.DeleteByID(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	appendAudit(r.Context(), h.logs, r, models.ActionAccountDelete, &user.ID, map[string]interface{}{"email": user.Email})
	okMessage(w, "Account deleted successfully")
}

// Favorites handles GET /api/user/favorites, returning the saved
// garments as summaries.
func (h *UserHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	summaries, err := h.garments.FindSummaries(r.Context(), user.Favorites)
	if err != nil {
		writeError(w, err)
		return
	}
	ok(w, summaries)
}

// AddFavorite handles POST /api/user/favorites/{id}.
func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	garmentID, valid := pathID(r)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid garment id")
		return
	}

	garment, err := h.garments.FindActiveByID(r.Context(), garmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if garment == nil {
		utils.RespondError(w, http.StatusNotFound, "Garment not found")
		return
	}

	if err := h.users.AddFavorite(r.Context(), user.ID, garmentID); err != nil {
		writeError(w, err)
		return
	}
	okMessage(w, "Added to favorites")
}

// RemoveFavorite handles DELETE /api/user/favorites/{id}. Removing an
// id that is not in the list is a successful no-op.
func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	garmentID, valid := pathID(r)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid garment id")
		return
	}

	if err := h.users.RemoveFavorite(r.Context(), user.ID, garmentID); err != nil {
		writeError(w, err)
		return
	}
	okMessage(w, "Removed from favorites")
}
