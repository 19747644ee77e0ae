package api

import (
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylefit/tryon-server/models"
	"github.com/stylefit/tryon-server/repositories"
	"github.com/stylefit/tryon-server/services"
	"github.com/stylefit/tryon-server/storage"
	"github.com/stylefit/tryon-server/utils"
)

// AdminHandler serves user administration, catalog management and the
// analytics dashboard.
type AdminHandler struct {
	users     repositories.UserRepository
	garments  repositories.GarmentRepository
	logs      repositories.LogRepository
	blobs     services.BlobStore
	analytics *services.AnalyticsService
}

func NewAdminHandler(
	users repositories.UserRepository,
	garments repositories.GarmentRepository,
	logs repositories.LogRepository,
	blobs services.BlobStore,
	analytics *services.AnalyticsService,
) *AdminHandler {
	return &AdminHandler{users: users, garments: garments, logs: logs, blobs: blobs, analytics: analytics}
}

// Users handles GET /api/admin/users with search and blocked filters.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pageParams(r, 20)

	opts := repositories.ListUsersOptions{
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	}
	if v := q.Get("isBlocked"); v != "" {
		blocked := v == "true"
		opts.Blocked = &blocked
	}

	users, total, err := h.users.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	okList(w, users, utils.NewPagination(page, limit, total))
}

// ToggleUserBlock handles PUT /api/admin/users/{id}/block. Admin
// accounts cannot be blocked.
func (h *AdminHandler) ToggleUserBlock(w http.ResponseWriter, r *http.Request) {
	admin := UserFromContext(r.Context())

	id, valid := pathID(r)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}
	if user.IsAdmin() {
		utils.RespondError(w, http.StatusBadRequest, "Cannot block admin users")
		return
	}

	user.IsBlocked = !user.IsBlocked
	if err := h.users.UpdateByID(r.Context(), user.ID, bson.M{"is_blocked": user.IsBlocked}); err != nil {
		writeError(w, err)
		return
	}

	action := models.ActionUserUnblock
	message := "User unblocked"
	if user.IsBlocked {
		action = models.ActionUserBlock
		message = "User blocked"
	}
	appendAudit(r.Context(), h.logs, r, action, &admin.ID, map[string]interface{}{
		"targetUserId": user.ID.Hex(),
		"email":        user.Email,
	})

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"data":    user,
	})
}

// DeleteUser handles DELETE /api/admin/users/{id}. Admin accounts
// cannot be deleted.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin := UserFromContext(r.Context())

	id, valid := pathID(r)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}
	if user.IsAdmin() {
		utils.RespondError(w, http.StatusBadRequest, "Cannot delete admin users")
		return
	}

	if path := h.blobs.URLToPath(user.ProfileImage); path != "" {
		h.blobs.Delete(r.Context(), path)
	}

	appendAudit(r.Context(), h.logs, r, models.ActionAdminAction, &admin.ID, map[string]interface{}{
		"action":       "delete_user",
		"targetUserId": user.ID.Hex(),
		"email":        user.Email,
	})

	if err := h.users.DeleteByID(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}
	okMessage(w, "User deleted successfully")
}

// UserActivity handles GET /api/admin/users/{id}/activity.
func (h *AdminHandler) UserActivity(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	activity, err := h.analytics.UserActivity(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	ok(w, map[string]interface{}{
		"user":     user,
		"activity": activity,
	})
}

// Garments handles GET /api/admin/garments. Unlike the public catalog,
// inactive entries are included.
func (h *AdminHandler) Garments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pageParams(r, 20)

	opts := repositories.ListGarmentsOptions{
		Category:        q.Get("category"),
		Search:          q.Get("search"),
		IncludeInactive: true,
		Page:            page,
		Limit:           limit,
	}
	if v := q.Get("isActive"); v != "" {
		active := v == "true"
		opts.Active = &active
	}

	garments, total, err := h.garments.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	okList(w, garments, utils.NewPagination(page, limit, total))
}

// CreateGarment handles POST /api/admin/garments: multipart form with
// an "image" file plus the garment fields.
func (h *AdminHandler) CreateGarment(w http.ResponseWriter, r *http.Request) {
	admin := UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	category := r.FormValue("category")
	gender := r.FormValue("gender")

	if name == "" {
		utils.RespondError(w, http.StatusBadRequest, "Garment name is required")
		return
	}
	if !models.ValidCategory(category) {
		utils.RespondError(w, http.StatusBadRequest, "Invalid category")
		return
	}
	if !models.ValidGarmentGender(gender) {
		utils.RespondError(w, http.StatusBadRequest, "Invalid gender")
		return
	}

	image, err := formFileBytes(r, "image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if len(image) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Please upload a garment image")
		return
	}

	normalized, err := storage.NormalizeImage(image)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Uploaded file is not a valid image")
		return
	}
	uploaded, err := h.blobs.Upload(r.Context(), normalized, services.FolderGarments, "image/jpeg")
	if err != nil {
		writeError(w, err)
		return
	}

	garment := &models.Garment{
		Name:        name,
		Category:    category,
		Gender:      gender,
		Fabric:      r.FormValue("fabric"),
		Color:       r.FormValue("color"),
		Description: r.FormValue("description"),
		ImageURL:    uploaded.URL,
		IsActive:    true,
		CreatedBy:   admin.ID,
	}
	if err := h.garments.Create(r.Context(), garment); err != nil {
		writeError(w, err)
		return
	}

	appendAudit(r.Context(), h.logs, r, models.ActionGarmentCreate, &admin.ID, map[string]interface{}{
		"garmentId": garment.ID.Hex(),
	})

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Garment created successfully",
		"data":    garment,
	})
}

// UpdateGarment handles PUT /api/admin/garments/{id}. Only provided
// fields change; a new image replaces the old blob.
func (h *AdminHandler) UpdateGarment(w http.ResponseWriter, r *http.Request) {
	admin := UserFromContext(r.Context())

	id, valid := pathID(r)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid garment id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	garment, err := h.garments.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if garment == nil {
		utils.RespondError(w, http.StatusNotFound, "Garment not found")
		return
	}

	set := bson.M{}
	if v := strings.TrimSpace(r.FormValue("name")); v != "" {
		set["name"] = v
		garment.Name = v
	}
	if v := r.FormValue("category"); v != "" {
		if !models.ValidCategory(v) {
			utils.RespondError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		set["category"] = v
		garment.Category = v
	}
	if v := r.FormValue("gender"); v != "" {
		if !models.ValidGarmentGender(v) {
			utils.RespondError(w, http.StatusBadRequest, "Invalid gender")
			return
		}
		set["gender"] = v
		garment.Gender = v
	}
	if _, present := r.Form["fabric"]; present {
		garment.Fabric = r.FormValue("fabric")
		set["fabric"] = garment.Fabric
	}
	if _, present := r.Form["color"]; present {
		garment.Color = r.FormValue("color")
		set["color"] = garment.Color
	}
	if _, present := r.Form["description"]; present {
		garment.Description = r.FormValue("description")
		set["description"] = garment.Description
	}
	if v := r.FormValue("isActive"); v != "" {
		active, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid isActive value")
			return
		}
		set["is_active"] = active
		garment.IsActive = active
	}

	image, err := formFileBytes(r, "image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if len(image) > 0 {
		normalized, imgErr := storage.NormalizeImage(image)
		if imgErr != nil {
			utils.RespondError(w, http.StatusBadRequest, "Uploaded file is not a valid image")
			return
		}
		uploaded, upErr := h.blobs.Upload(r.Context(), normalized, services.FolderGarments, "image/jpeg")
		if upErr != nil {
			writeError(w, upErr)
			return
		}
		if old := h.blobs.URLToPath(garment.ImageURL); old != "" {
			h.blobs.Delete(r.Context(), old)
		}
		set["image_url"] = uploaded.URL
		garment.ImageURL = uploaded.URL
	}

	if len(set) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := h.garments.UpdateByID(r.Context(), id, set); err != nil {
		writeError(w, err)
		return
	}

	appendAudit(r.Context(), h.logs, r, models.ActionGarmentUpdate, &admin.ID, map[string]interface{}{
		"garmentId": id.Hex(),
	})

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Garment updated successfully",
		"data":    garment,
	})
}

// DeleteGarment handles DELETE /api/admin/garments/{id}. Historical
// try-on records keep their garment reference; only the catalog entry
// and its image blob go away.
func (h *AdminHandler) DeleteGarment(w http.ResponseWriter, r *http.Request) {
	admin := UserFromContext(r.Context())

	id, valid := pathID(r)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid garment id")
		return
	}

	garment, err := h.garments.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if garment == nil {
		utils.RespondError(w, http.StatusNotFound, "Garment not found")
		return
	}

	if path := h.blobs.URLToPath(garment.ImageURL); path != "" {
		h.blobs.Delete(r.Context(), path)
	}

	appendAudit(r.Context(), h.logs, r, models.ActionGarmentDelete, &admin.ID, map[string]interface{}{
		"garmentId": garment.ID.Hex(),
		"name":      garment.Name,
	})

	if err := h.garments.DeleteByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	okMessage(w, "Garment deleted successfully")
}

// Analytics handles GET /api/admin/analytics: the system snapshot plus
// the top five garments, the trailing seven-day trend and the category
// distribution.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.analytics.SystemAnalytics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	popular, err := h.analytics.PopularGarments(r.Context(), 5)
	if err != nil {
		writeError(w, err)
		return
	}
	daily, err := h.analytics.DailyTrend(r.Context(), 7)
	if err != nil {
		writeError(w, err)
		return
	}
	categories, err := h.analytics.CategoryDistribution(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	ok(w, map[string]interface{}{
		"users":                snapshot.Users,
		"garments":             snapshot.Garments,
		"tryOns":               snapshot.TryOns,
		"popularGarments":      popular,
		"dailyStats":           daily,
		"categoryDistribution": categories,
	})
}

// Logs handles GET /api/admin/logs with optional action and userId
// filters.
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pageParams(r, 50)

	opts := repositories.ListLogsOptions{
		Action: q.Get("action"),
		Page:   page,
		Limit:  limit,
	}
	if v := q.Get("userId"); v != "" {
		userID, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid user id")
			return
		}
		opts.UserID = &userID
	}

	logs, total, err := h.logs.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	okList(w, logs, utils.NewPagination(page, limit, total))
}
