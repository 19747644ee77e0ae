package api

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylefit/tryon-server/models"
	"github.com/stylefit/tryon-server/repositories"
	"github.com/stylefit/tryon-server/services"
	"github.com/stylefit/tryon-server/utils"
)

type contextKey int

const userContextKey contextKey = iota

// Middleware bundles the cross-cutting request handling: CORS, latency
// logging, and the JWT auth gates.
type Middleware struct {
	users      repositories.UserRepository
	jwtSecret  []byte
	corsOrigin string
}

func NewMiddleware(users repositories.UserRepository, jwtSecret, corsOrigin string) *Middleware {
	return &Middleware{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		corsOrigin: corsOrigin,
	}
}

// CORS answers preflight requests and stamps the allow headers.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", m.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Latency logs the duration of each request.
func Latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[LATENCY] %s %s - %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// RequireAuth verifies the bearer token, loads the account and rejects
// blocked users. The user lands in the request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		userIDHex, err := utils.ValidateToken(m.jwtSecret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			utils.RespondError(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		userID, err := primitive.ObjectIDFromHex(userIDHex)
		if err != nil {
			utils.RespondError(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		user, err := m.users.FindByID(r.Context(), userID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Authentication error.")
			return
		}
		if user == nil {
			utils.RespondError(w, http.StatusUnauthorized, "User not found. Token invalid.")
			return
		}
		if user.IsBlocked {
			utils.RespondError(w, http.StatusForbidden, "Your account has been blocked. Contact support.")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	}
}

// RequireAdmin gates a handler behind the admin role. Must run inside
// RequireAuth.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil || !user.IsAdmin() {
			utils.RespondError(w, http.StatusForbidden, "Access denied. Admin privileges required.")
			return
		}
		next(w, r)
	})
}

// UserFromContext returns the authenticated user, or nil outside
// RequireAuth.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// MetaFromRequest extracts the best-effort caller identity for audit
// entries.
func MetaFromRequest(r *http.Request) services.RequestMeta {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}
	if i := strings.IndexByte(ip, ','); i >= 0 {
		ip = strings.TrimSpace(ip[:i])
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return services.RequestMeta{IP: ip, UserAgent: r.UserAgent()}
}
