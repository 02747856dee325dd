package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
	"github.com/Unblonde/gentle-separation-guide/internal/invite"
	"github.com/Unblonde/gentle-separation-guide/internal/mail"
	"github.com/Unblonde/gentle-separation-guide/internal/metrics"
)

// invitationStore is the subset of invite.Store the handlers call, kept
// narrow so tests can substitute a fake.
type invitationStore interface {
	Create(ctx context.Context, in invite.CreateInvitationInput) (*invite.Invitation, error)
	GetPending(ctx context.Context, token string) (*invite.Invitation, error)
	ListByFamily(ctx context.Context, familyID string) ([]*invite.Invitation, error)
	Accept(ctx context.Context, token, userID, role string) (*family.Member, error)
}

// invitationHandler groups invitation HTTP handlers.
type invitationHandler struct {
	store    invitationStore
	families *family.Store
	mailer   *mail.Mailer
	metrics  *metrics.Metrics
}

func newInvitationHandler(store invitationStore, families *family.Store, mailer *mail.Mailer, m *metrics.Metrics) *invitationHandler {
	return &invitationHandler{store: store, families: families, mailer: mailer, metrics: m}
}

// Create handles POST /api/v1/invitations. The response carries the token;
// the email, when a mailer is configured, is a convenience that must not
// fail the request.
func (h *invitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
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

	inv, err := h.store.Create(r.Context(), invite.CreateInvitationInput{
		FamilyID:  fam.FamilyID,
		InvitedBy: u.ID,
		Email:     req.Email,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create invitation")
		return
	}
	h.metrics.InvitationsCreatedTotal.Inc()

	if h.mailer != nil && h.mailer.Enabled() {
		if err := h.mailer.SendInvitation(r.Context(), inv.Email, u.FullName, inv.Token); err != nil {
			slog.Warn("invitation email failed", "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, inv)
}

// List handles GET /api/v1/invitations.
func (h *invitationHandler) List(w http.ResponseWriter, r *http.Request) {
	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	invs, err := h.store.ListByFamily(r.Context(), fam.FamilyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list invitations")
		return
	}
	if invs == nil {
		invs = []*invite.Invitation{}
	}
	writeJSON(w, http.StatusOK, invs)
}

// Preview handles GET /api/v1/invitations/{token}. It is unauthenticated so
// the invite landing page can show who the invitation is for before the
// invitee signs up; possession of the token is the credential. The token
// itself is not echoed back.
func (h *invitationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	inv, err := h.store.GetPending(r.Context(), token)
	if errors.Is(err, invite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "invitation not found or already accepted")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load invitation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"email":      inv.Email,
		"status":     inv.Status,
		"created_at": inv.CreatedAt,
	})
}

// Accept handles POST /api/v1/invitations/{token}/accept. The joiner
// defaults to role Parent B.
func (h *invitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	token := chi.URLParam(r, "token")

	// The body is optional; an absent one means the default role.
	var req struct {
		Role string `json:"role"`
	}
	if err := readJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if req.Role == "" {
		req.Role = "Parent B"
	}

	member, err := h.store.Accept(r.Context(), token, u.ID, req.Role)
	if errors.Is(err, invite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "invitation not found or already accepted")
		return
	}
	if errors.Is(err, family.ErrAlreadyMember) {
		writeError(w, http.StatusConflict, "conflict", "your account already belongs to a family")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to accept invitation")
		return
	}

	h.metrics.InvitationsAcceptedTotal.Inc()
	writeJSON(w, http.StatusOK, member)
}
