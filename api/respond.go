package api

import (
	"log"
	"net/http"

	"github.com/stylefit/tryon-server/apperrors"
	"github.com/stylefit/tryon-server/utils"
)

// writeError maps the service error taxonomy to HTTP statuses in one
// place. Untyped errors become opaque 500s.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindAuthorization:
		status = http.StatusForbidden
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindExternal:
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		log.Printf("[ERROR] %v", err)
	}
	utils.RespondError(w, status, apperrors.Message(err))
}

func ok(w http.ResponseWriter, data interface{}) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func okMessage(w http.ResponseWriter, message string) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
	})
}

func okList(w http.ResponseWriter, data interface{}, p utils.Pagination) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"data":       data,
		"pagination": p,
	})
}
