package api

import (
	"net/http"

	"github.com/stylefit/tryon-server/models"
	"github.com/stylefit/tryon-server/repositories"
	"github.com/stylefit/tryon-server/utils"
)

// GarmentHandler serves the public catalog endpoints. Inactive garments
// never appear here.
type GarmentHandler struct {
	garments repositories.GarmentRepository
}

func NewGarmentHandler(garments repositories.GarmentRepository) *GarmentHandler {
	return &GarmentHandler{garments: garments}
}

// List handles GET /api/garments with optional category, gender, color,
// fabric and search filters.
func (h *GarmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if c := q.Get("category"); c != "" && !models.ValidCategory(c) {
		utils.RespondError(w, http.StatusBadRequest, "Invalid category")
		return
	}
	if g := q.Get("gender"); g != "" && !models.ValidGarmentGender(g) {
		utils.RespondError(w, http.StatusBadRequest, "Invalid gender")
		return
	}

	page, limit := pageParams(r, 20)
	garments, total, err := h.garments.List(r.Context(), repositories.ListGarmentsOptions{
		Category: q.Get("category"),
		Gender:   q.Get("gender"),
		Color:    q.Get("color"),
		Fabric:   q.Get("fabric"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	okList(w, garments, utils.NewPagination(page, limit, total))
}

// Get handles GET /api/garments/{id}.
func (h *GarmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid garment id")
		return
	}

	garment, err := h.garments.FindActiveByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if garment == nil {
		utils.RespondError(w, http.StatusNotFound, "Garment not found")
		return
	}
	ok(w, garment)
}

// Categories handles GET /api/garments/meta/categories.
func (h *GarmentHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ok(w, models.GarmentCategories)
}

// Colors handles GET /api/garments/meta/colors, listing the distinct
// colors present in the active catalog.
func (h *GarmentHandler) Colors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.garments.DistinctColors(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	ok(w, colors)
}
