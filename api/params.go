package api

import (
	"io"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxUploadSize bounds multipart form parsing.
const maxUploadSize = 10 << 20 // 10MB

// pageParams parses the page/limit query parameters with sane defaults.
func pageParams(r *http.Request, defaultLimit int) (page, limit int) {
	page, limit = 1, defaultLimit
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	return page, limit
}

// parseObjectID parses a hex ObjectID from a form or query value.
func parseObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}

// pathID parses the {id} path segment as an ObjectID.
func pathID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	return id, err == nil
}

// formFileBytes reads one uploaded file from an already-parsed multipart
// form. Returns nil when the field is absent.
func formFileBytes(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
