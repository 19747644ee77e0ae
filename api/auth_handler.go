package api

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/stylefit/tryon-server/config"
	"github.com/stylefit/tryon-server/models"
	"github.com/stylefit/tryon-server/repositories"
	"github.com/stylefit/tryon-server/utils"
)

var emailRegexp = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

const resetTokenTTL = time.Hour

// AuthHandler handles registration, login and password recovery.
type AuthHandler struct {
	users  repositories.UserRepository
	logs   repositories.LogRepository
	mailer *utils.Mailer
	cfg    *config.Config
}

func NewAuthHandler(users repositories.UserRepository, logs repositories.LogRepository, mailer *utils.Mailer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, logs: logs, mailer: mailer, cfg: cfg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if len(req.Name) < 2 || len(req.Name) > 50 {
		utils.RespondError(w, http.StatusBadRequest, "Name must be 2-50 characters")
		return
	}
	if !emailRegexp.MatchString(req.Email) {
		utils.RespondError(w, http.StatusBadRequest, "Please provide a valid email")
		return
	}
	if len(req.Password) < 6 {
		utils.RespondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	existing, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing != nil {
		utils.RespondError(w, http.StatusBadRequest, "Email already registered")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		writeError(w, err)
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     models.RoleUser,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	token, err := utils.GenerateToken([]byte(h.cfg.JWTSecret), user.ID.Hex(), h.cfg.JWTExpiry)
	if err != nil {
		writeError(w, err)
		return
	}

	appendAudit(r.Context(), h.logs, r, models.ActionUserRegister, &user.ID, map[string]interface{}{"email": user.Email})

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Registration successful",
		"data":    map[string]interface{}{"user": user, "token": token},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if user.IsBlocked {
		utils.RespondError(w, http.StatusForbidden, "Your account has been blocked. Contact support.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateToken([]byte(h.cfg.JWTSecret), user.ID.Hex(), h.cfg.JWTExpiry)
	if err != nil {
		writeError(w, err)
		return
	}

	appendAudit(r.Context(), h.logs, r, models.ActionUserLogin, &user.ID, map[string]interface{}{"email": user.Email})

	ok(w, map[string]interface{}{"user": user, "token": token})
}

// Logout handles POST /api/auth/logout. Tokens are stateless; this only
// leaves an audit trail.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	appendAudit(r.Context(), h.logs, r, models.ActionUserLogout, &user.ID, nil)
	okMessage(w, "Logged out successfully")
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ok(w, UserFromContext(r.Context()))
}

// ForgotPassword handles POST /api/auth/forgot-password. The response
// never reveals whether the email exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	const neutral = "If the email exists, a reset link will be sent"

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		okMessage(w, neutral)
		return
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		writeError(w, err)
		return
	}
	resetToken := hex.EncodeToString(raw)
	hashed := sha256.Sum256([]byte(resetToken))

	err = h.users.UpdateByID(r.Context(), user.ID, bson.M{
		"reset_password_token":   hex.EncodeToString(hashed[:]),
		"reset_password_expires": time.Now().Add(resetTokenTTL),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	appendAudit(r.Context(), h.logs, r, models.ActionPasswordResetRequest, &user.ID, map[string]interface{}{"email": user.Email})

	if err := h.mailer.Send(user.Name, user.Email, "Reset your password",
		"Your password reset code is: "+resetToken,
		"<p>Your password reset code is: <strong>"+resetToken+"</strong></p>"); err != nil {
		// The token is stored either way; the client can retry.
		utils.RespondError(w, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	okMessage(w, neutral)
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" {
		utils.RespondError(w, http.StatusBadRequest, "Reset token is required")
		return
	}
	if len(req.Password) < 6 {
		utils.RespondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hashed := sha256.Sum256([]byte(req.Token))
	user, err := h.users.FindByResetToken(r.Context(), hex.EncodeToString(hashed[:]), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.UpdateByID(r.Context(), user.ID, bson.M{"password": string(hashedPassword)}); err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.ClearResetToken(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	appendAudit(r.Context(), h.logs, r, models.ActionPasswordResetComplete, &user.ID, nil)

	okMessage(w, "Password reset successful. Please login with your new password.")
}

func (h *AuthHandler) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		RedirectURL:  h.cfg.GoogleRedirectURL,
		ClientID:     h.cfg.GoogleClientID,
		ClientSecret: h.cfg.GoogleClientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleLogin handles GET /api/auth/google/login by redirecting to the
// Google consent screen.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	raw := make([]byte, 16)
	rand.Read(raw)
	state := hex.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
	})
	http.Redirect(w, r, h.oauthConfig().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/google/callback: exchanges the
// code, upserts the account and issues the same JWT as password login.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.FormValue("state") != stateCookie.Value {
		utils.RespondError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	code := r.FormValue("code")
	if code == "" {
		utils.RespondError(w, http.StatusBadRequest, "Code not found")
		return
	}

	token, err := h.oauthConfig().Exchange(r.Context(), code)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "Failed to exchange token")
		return
	}

	info, err := fetchGoogleUserInfo(r.Context(), token.AccessToken)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "Failed to get user info")
		return
	}
	if info.Email == "" {
		utils.RespondError(w, http.StatusBadGateway, "Google account has no email")
		return
	}

	email := strings.ToLower(info.Email)
	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		// First sign-in; the random password keeps the password path
		// unusable until the user resets it.
		raw := make([]byte, 32)
		rand.Read(raw)
		hashed, hashErr := bcrypt.GenerateFromPassword(raw, 12)
		if hashErr != nil {
			writeError(w, hashErr)
			return
		}
		user = &models.User{
			Name:     info.Name,
			Email:    email,
			Password: string(hashed),
			Role:     models.RoleUser,
		}
		if err := h.users.Create(r.Context(), user); err != nil {
			writeError(w, err)
			return
		}
		appendAudit(r.Context(), h.logs, r, models.ActionUserRegister, &user.ID, map[string]interface{}{"email": email, "provider": "google"})
	}
	if user.IsBlocked {
		utils.RespondError(w, http.StatusForbidden, "Your account has been blocked. Contact support.")
		return
	}

	jwtToken, err := utils.GenerateToken([]byte(h.cfg.JWTSecret), user.ID.Hex(), h.cfg.JWTExpiry)
	if err != nil {
		writeError(w, err)
		return
	}

	appendAudit(r.Context(), h.logs, r, models.ActionUserLogin, &user.ID, map[string]interface{}{"email": email, "provider": "google"})

	ok(w, map[string]interface{}{"user": user, "token": jwtToken})
}

type googleUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func fetchGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.googleapis.com/oauth2/v2/userinfo?access_token="+accessToken, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
