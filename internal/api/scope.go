package api

import (
	"errors"
	"net/http"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
)

// resolveFamily loads the caller's family scope, writing the error response
// itself when there is nothing for the handler to work with.
func resolveFamily(w http.ResponseWriter, r *http.Request, store *family.Store) (*family.Data, bool) {
	u := auth.UserFromContext(r.Context())

	data, err := store.Resolve(r.Context(), u.ID)
	if errors.Is(err, family.ErrMultipleFamilies) {
		writeError(w, http.StatusConflict, "conflict", "account belongs to more than one family, contact support")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to resolve family")
		return nil, false
	}
	if data == nil {
		writeError(w, http.StatusNotFound, "not_found", "no family for this account yet")
		return nil, false
	}
	return data, true
}
