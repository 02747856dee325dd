package api

import (
	"errors"
	"net/http"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/user"
)

// profileHandler groups profile HTTP handlers.
type profileHandler struct {
	store *user.Store
}

func newProfileHandler(store *user.Store) *profileHandler {
	return &profileHandler{store: store}
}

// Get handles GET /api/v1/profile.
func (h *profileHandler) Get(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	p, err := h.store.GetProfile(r.Context(), u.ID)
	if errors.Is(err, user.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "profile not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Update handles PATCH /api/v1/profile.
func (h *profileHandler) Update(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	var req user.UpdateProfileInput
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	p, err := h.store.UpdateProfile(r.Context(), u.ID, req)
	if errors.Is(err, user.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "profile not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, p)
}
