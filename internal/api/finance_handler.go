package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
	"github.com/Unblonde/gentle-separation-guide/internal/finance"
)

// financeHandler groups financial arrangement HTTP handlers.
type financeHandler struct {
	store    *finance.Store
	families *family.Store
}

func newFinanceHandler(store *finance.Store, families *family.Store) *financeHandler {
	return &financeHandler{store: store, families: families}
}

// List handles GET /api/v1/finances.
func (h *financeHandler) List(w http.ResponseWriter, r *http.Request) {
	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	arrangements, err := h.store.ListByFamily(r.Context(), fam.FamilyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list financial arrangements")
		return
	}
	if arrangements == nil {
		arrangements = []*finance.Arrangement{}
	}
	writeJSON(w, http.StatusOK, arrangements)
}

// Create handles POST /api/v1/finances.
func (h *financeHandler) Create(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	var req finance.CreateArrangementInput
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	// Scope comes from the session, never from the payload.
	req.FamilyID = fam.FamilyID
	req.CreatedBy = u.ID

	if err := finance.ValidateCreate(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	a, err := h.store.Create(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create financial arrangement")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Update handles PATCH /api/v1/finances/{id}. Either parent may edit any
// field, including the other parent's view.
func (h *financeHandler) Update(w http.ResponseWriter, r *http.Request) {
	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	existing, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, finance.ErrNotFound) || (err == nil && existing.FamilyID != fam.FamilyID) {
		writeError(w, http.StatusNotFound, "not_found", "financial arrangement not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load financial arrangement")
		return
	}

	var req finance.UpdateArrangementInput
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if err := finance.ValidateUpdate(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	a, err := h.store.Update(r.Context(), id, req)
	if errors.Is(err, finance.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "financial arrangement not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update financial arrangement")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
