package api

import (
	"net/http"

	"github.com/stylefit/tryon-server/services"
	"github.com/stylefit/tryon-server/utils"
)

// TryOnHandler exposes the try-on lifecycle over HTTP.
type TryOnHandler struct {
	tryons *services.TryOnService
}

func NewTryOnHandler(tryons *services.TryOnService) *TryOnHandler {
	return &TryOnHandler{tryons: tryons}
}

// Create handles POST /api/tryon: multipart form with an "image" file
// and a "garmentId" field. A failed try-on is reported with the record
// id so the client can show it in history.
func (h *TryOnHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	garmentID, err := parseObjectID(r.FormValue("garmentId"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid garment id")
		return
	}

	image, err := formFileBytes(r, "image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	outcome, err := h.tryons.Initiate(r.Context(), user.ID, garmentID, image, MetaFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	if !outcome.Completed {
		// The transport call succeeded; the failure is a business outcome
		// carried in the payload, and the record stays queryable.
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": "Try-on processing failed",
			"error":   outcome.FailureReason,
			"data":    map[string]interface{}{"id": outcome.Request.ID},
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Try-on completed successfully",
		"data": map[string]interface{}{
			"id":             outcome.Request.ID,
			"inputImageUrl":  outcome.Request.InputImageURL,
			"outputImageUrl": outcome.Request.OutputImageURL,
			"garment":        outcome.Garment,
			"processingTime": outcome.Request.ProcessingTime,
		},
	})
}

// History handles GET /api/tryon/history.
func (h *TryOnHandler) History(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	page, limit := pageParams(r, 20)
	items, total, err := h.tryons.History(r.Context(), user.ID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	okList(w, items, utils.NewPagination(page, limit, total))
}

// Get handles GET /api/tryon/{id}.
func (h *TryOnHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, valid := pathID(r)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid try-on id")
		return
	}

	item, err := h.tryons.Get(r.Context(), id, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	ok(w, item)
}

// Delete handles DELETE /api/tryon/{id}.
func (h *TryOnHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, valid := pathID(r)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid try-on id")
		return
	}

	if err := h.tryons.DeleteOne(r.Context(), id, user.ID); err != nil {
		writeError(w, err)
		return
	}
	okMessage(w, "Try-on result deleted")
}

// ClearHistory handles DELETE /api/tryon/history. Clearing an empty
// history succeeds with a zero count.
func (h *TryOnHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	deleted, err := h.tryons.ClearAll(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	ok(w, map[string]interface{}{"deleted": deleted})
}
