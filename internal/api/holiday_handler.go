package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
	"github.com/Unblonde/gentle-separation-guide/internal/holiday"
)

// holidayHandler groups holiday arrangement HTTP handlers.
type holidayHandler struct {
	store    *holiday.Store
	families *family.Store
}

func newHolidayHandler(store *holiday.Store, families *family.Store) *holidayHandler {
	return &holidayHandler{store: store, families: families}
}

// List handles GET /api/v1/holidays.
func (h *holidayHandler) List(w http.ResponseWriter, r *http.Request) {
	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	arrangements, err := h.store.ListByFamily(r.Context(), fam.FamilyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list holiday arrangements")
		return
	}
	if arrangements == nil {
		arrangements = []*holiday.Arrangement{}
	}
	writeJSON(w, http.StatusOK, arrangements)
}

// Create handles POST /api/v1/holidays.
func (h *holidayHandler) Create(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	var req holiday.CreateArrangementInput
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	req.FamilyID = fam.FamilyID
	req.CreatedBy = u.ID

	if err := holiday.ValidateCreate(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	a, err := h.store.Create(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create holiday arrangement")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Update handles PATCH /api/v1/holidays/{id}.
func (h *holidayHandler) Update(w http.ResponseWriter, r *http.Request) {
	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	existing, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, holiday.ErrNotFound) || (err == nil && existing.FamilyID != fam.FamilyID) {
		writeError(w, http.StatusNotFound, "not_found", "holiday arrangement not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load holiday arrangement")
		return
	}

	var req holiday.UpdateArrangementInput
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if err := holiday.ValidateUpdate(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	a, err := h.store.Update(r.Context(), id, req)
	if errors.Is(err, holiday.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "holiday arrangement not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update holiday arrangement")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /api/v1/holidays/{id}. Deleting an entry that is
// already gone succeeds; only an entry belonging to another family is
// refused.
func (h *holidayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	existing, err := h.store.GetByID(r.Context(), id)
	if err == nil && existing.FamilyID != fam.FamilyID {
		writeError(w, http.StatusNotFound, "not_found", "holiday arrangement not found")
		return
	}
	if err != nil && !errors.Is(err, holiday.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load holiday arrangement")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete holiday arrangement")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
