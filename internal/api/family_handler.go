package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
)

// familyHandler groups family HTTP handlers.
type familyHandler struct {
	store *family.Store
}

func newFamilyHandler(store *family.Store) *familyHandler {
	return &familyHandler{store: store}
}

// Get handles GET /api/v1/family. A user without a family gets 200 with a
// null body rather than 404: "no family yet" is a normal state the app
// shell renders, not an error.
func (h *familyHandler) Get(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	data, err := h.store.Resolve(r.Context(), u.ID)
	if errors.Is(err, family.ErrMultipleFamilies) {
		writeError(w, http.StatusConflict, "conflict", "account belongs to more than one family, contact support")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to resolve family")
		return
	}
	if data == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	writeJSON(w, http.StatusOK, data)
}

// Create handles POST /api/v1/family. The creator becomes the family's
// first member with role Parent A unless the request says otherwise.
func (h *familyHandler) Create(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	// The body is optional; an absent one means the default role.
	var req struct {
		Role string `json:"role"`
	}
	if err := readJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if req.Role == "" {
		req.Role = "Parent A"
	}

	existing, err := h.store.Resolve(r.Context(), u.ID)
	if err != nil && !errors.Is(err, family.ErrMultipleFamilies) {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to resolve family")
		return
	}
	if existing != nil || errors.Is(err, family.ErrMultipleFamilies) {
		writeError(w, http.StatusConflict, "conflict", "account already belongs to a family")
		return
	}

	data, err := h.store.Create(r.Context(), u.ID, req.Role)
	if errors.Is(err, family.ErrAlreadyMember) {
		// Lost a race with a concurrent create or accept; the unique
		// constraint on memberships is the arbiter.
		writeError(w, http.StatusConflict, "conflict", "account already belongs to a family")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create family")
		return
	}

	writeJSON(w, http.StatusCreated, data)
}
