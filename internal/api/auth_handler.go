package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/metrics"
	"github.com/Unblonde/gentle-separation-guide/internal/user"
)

const oauthStateCookie = "oauth_state"

// authHandler groups authentication HTTP handlers.
type authHandler struct {
	store   *user.Store
	oauth   *auth.GoogleOAuth
	limiter *loginRateLimiter
	metrics *metrics.Metrics
	baseURL string
}

func newAuthHandler(store *user.Store, oauth *auth.GoogleOAuth, limiter *loginRateLimiter, m *metrics.Metrics, baseURL string) *authHandler {
	return &authHandler{store: store, oauth: oauth, limiter: limiter, metrics: m, baseURL: baseURL}
}

// Signup handles POST /api/v1/auth/signup.
func (h *authHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeValidationError(w, "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		writeValidationError(w, "password must be at least 8 characters")
		return
	}

	u, err := h.store.Create(r.Context(), user.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		if user.IsDuplicateEmail(err) {
			writeError(w, http.StatusConflict, "conflict", "an account with that email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create account")
		return
	}

	token, _, err := h.store.CreateSession(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	h.metrics.IncAuthSuccess("signup")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":        u.ID,
			"email":     u.Email,
			"full_name": req.FullName,
		},
	})
}

// Login handles POST /api/v1/auth/login.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	if allowed, retryAfter := h.limiter.allow(clientIP(r)); !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many login attempts, try again later")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeValidationError(w, "email and password are required")
		return
	}

	u, err := h.store.GetByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil || !user.CheckPassword(u, req.Password) {
		h.metrics.IncAuthFailure("password")
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
		return
	}

	token, _, err := h.store.CreateSession(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	h.metrics.IncAuthSuccess("password")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":    u.ID,
			"email": u.Email,
		},
	})
}

// Me handles GET /api/v1/auth/me.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        u.ID,
		"email":     u.Email,
		"full_name": u.FullName,
	})
}

// Logout handles POST /api/v1/auth/logout.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractBearerToken(r)
	if token == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	_ = h.store.DeleteSession(r.Context(), token)
	w.WriteHeader(http.StatusNoContent)
}

// GoogleStart handles GET /api/v1/auth/google. It sends the browser to
// Google's consent screen with a random state bound to a short-lived cookie.
func (h *authHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		writeError(w, http.StatusNotFound, "not_found", "google sign-in is not configured")
		return
	}

	state := generateID()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback handles GET /api/v1/auth/google/callback. On success the
// browser is redirected to the app shell with the session token in the URL
// fragment, which never reaches server logs.
func (h *authHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		writeError(w, http.StatusNotFound, "not_found", "google sign-in is not configured")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		h.metrics.IncAuthFailure("oauth")
		writeError(w, http.StatusBadRequest, "invalid_state", "oauth state mismatch")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		h.metrics.IncAuthFailure("oauth")
		writeError(w, http.StatusBadRequest, "invalid_code", "missing authorization code")
		return
	}

	info, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.metrics.IncAuthFailure("oauth")
		writeError(w, http.StatusUnauthorized, "unauthorized", "google sign-in failed")
		return
	}

	u, err := h.store.FindOrCreateByEmail(r.Context(), info.Email, info.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to sign in")
		return
	}

	token, _, err := h.store.CreateSession(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	h.metrics.IncAuthSuccess("oauth")
	http.Redirect(w, r, fmt.Sprintf("%s/auth/callback#token=%s", h.baseURL, token), http.StatusFound)
}
