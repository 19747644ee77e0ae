package api

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stylefit/tryon-server/apperrors"
)

func TestMetaFromRequest_RemoteAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/tryon/history", nil)
	r.RemoteAddr = "192.168.1.10:54321"

	meta := MetaFromRequest(r)
	assert.Equal(t, "192.168.1.10", meta.IP)
}

func TestMetaFromRequest_ForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/tryon/history", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.Header.Set("User-Agent", "StyleFit-Android/1.4")

	meta := MetaFromRequest(r)
	assert.Equal(t, "203.0.113.7", meta.IP)
	assert.Equal(t, "StyleFit-Android/1.4", meta.UserAgent)
}

func TestPageParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/garments?page=3&limit=10", nil)
	page, limit := pageParams(r, 20)
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, limit)

	// Defaults
	r = httptest.NewRequest("GET", "/api/garments", nil)
	page, limit = pageParams(r, 20)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	// Out-of-range values fall back
	r = httptest.NewRequest("GET", "/api/garments?page=-1&limit=9999", nil)
	page, limit = pageParams(r, 20)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
}

func TestWriteError_MapsKinds(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperrors.Validation("bad"), 400},
		{"not found", apperrors.NotFound("missing"), 404},
		{"authorization", apperrors.Authorization("nope"), 403},
		{"external", apperrors.External("s3 down", errors.New("dial tcp")), 502},
		{"untyped", errors.New("boom"), 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}
