package api

import (
	"net/http"

	"github.com/stylefit/tryon-server/utils"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Garment *GarmentHandler
	TryOn   *TryOnHandler
	Admin   *AdminHandler
}

// NewRouter assembles the full route table. Literal paths like
// /api/tryon/history take precedence over the {id} patterns.
func NewRouter(h Handlers, m *Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
	})

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", m.RequireAuth(h.Auth.Logout))
	mux.HandleFunc("GET /api/auth/me", m.RequireAuth(h.Auth.Me))
	mux.HandleFunc("POST /api/auth/forgot-password", h.Auth.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", h.Auth.ResetPassword)
	mux.HandleFunc("GET /api/auth/google/login", h.Auth.GoogleLogin)
	mux.HandleFunc("GET /api/auth/google/callback", h.Auth.GoogleCallback)

	// User profile and favorites
	mux.HandleFunc("GET /api/user/profile", m.RequireAuth(h.User.Profile))
	mux.HandleFunc("PUT /api/user/profile", m.RequireAuth(h.User.UpdateProfile))
	mux.HandleFunc("POST /api/user/profile-image", m.RequireAuth(h.User.UploadProfileImage))
	mux.HandleFunc("PUT /api/user/change-password", m.RequireAuth(h.User.ChangePassword))
	mux.HandleFunc("DELETE /api/user/account", m.RequireAuth(h.User.DeleteAccount))
	mux.HandleFunc("GET /api/user/favorites", m.RequireAuth(h.User.Favorites))
	mux.HandleFunc("POST /api/user/favorites/{id}", m.RequireAuth(h.User.AddFavorite))
	mux.HandleFunc("DELETE /api/user/favorites/{id}", m.RequireAuth(h.User.RemoveFavorite))

	// Public catalog
	mux.HandleFunc("GET /api/garments", h.Garment.List)
	mux.HandleFunc("GET /api/garments/meta/categories", h.Garment.Categories)
	mux.HandleFunc("GET /api/garments/meta/colors", h.Garment.Colors)
	mux.HandleFunc("GET /api/garments/{id}", h.Garment.Get)

	// Try-on
	mux.HandleFunc("POST /api/tryon", m.RequireAuth(h.TryOn.Create))
	mux.HandleFunc("GET /api/tryon/history", m.RequireAuth(h.TryOn.History))
	mux.HandleFunc("DELETE /api/tryon/history", m.RequireAuth(h.TryOn.ClearHistory))
	mux.HandleFunc("GET /api/tryon/{id}", m.RequireAuth(h.TryOn.Get))
	mux.HandleFunc("DELETE /api/tryon/{id}", m.RequireAuth(h.TryOn.Delete))

	// Admin
	mux.HandleFunc("GET /api/admin/users", m.RequireAdmin(h.Admin.Users))
	mux.HandleFunc("PUT /api/admin/users/{id}/block", m.RequireAdmin(h.Admin.ToggleUserBlock))
	mux.HandleFunc("DELETE /api/admin/users/{id}", m.RequireAdmin(h.Admin.DeleteUser))
	mux.HandleFunc("GET /api/admin/users/{id}/activity", m.RequireAdmin(h.Admin.UserActivity))
	mux.HandleFunc("GET /api/admin/garments", m.RequireAdmin(h.Admin.Garments))
	mux.HandleFunc("POST /api/admin/garments", m.RequireAdmin(h.Admin.CreateGarment))
	mux.HandleFunc("PUT /api/admin/garments/{id}", m.RequireAdmin(h.Admin.UpdateGarment))
	mux.HandleFunc("DELETE /api/admin/garments/{id}", m.RequireAdmin(h.Admin.DeleteGarment))
	mux.HandleFunc("GET /api/admin/analytics", m.RequireAdmin(h.Admin.Analytics))
	mux.HandleFunc("GET /api/admin/logs", m.RequireAdmin(h.Admin.Logs))

	return m.CORS(Latency(mux))
}
