package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
	"github.com/Unblonde/gentle-separation-guide/internal/invite"
	"github.com/Unblonde/gentle-separation-guide/internal/metrics"
)

// fakeInviteStore implements invitationStore with canned results and records
// what Accept was called with.
type fakeInviteStore struct {
	pending   *invite.Invitation
	member    *family.Member
	acceptErr error

	acceptedToken string
	acceptedUser  string
	acceptedRole  string
}

func (f *fakeInviteStore) Create(_ context.Context, in invite.CreateInvitationInput) (*invite.Invitation, error) {
	return &invite.Invitation{FamilyID: in.FamilyID, Email: in.Email, Token: invite.NewToken(), Status: invite.StatusPending}, nil
}

func (f *fakeInviteStore) GetPending(_ context.Context, token string) (*invite.Invitation, error) {
	if f.pending == nil || f.pending.Token != token {
		return nil, invite.ErrNotFound
	}
	return f.pending, nil
}

func (f *fakeInviteStore) ListByFamily(_ context.Context, _ string) ([]*invite.Invitation, error) {
	return nil, nil
}

func (f *fakeInviteStore) Accept(_ context.Context, token, userID, role string) (*family.Member, error) {
	f.acceptedToken, f.acceptedUser, f.acceptedRole = token, userID, role
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return f.member, nil
}

func newInviteTestServer(store *fakeInviteStore) http.Handler {
	h := newInvitationHandler(store, nil, nil, metrics.New())
	r := chi.NewRouter()
	r.Get("/invitations/{token}", h.Preview)
	r.Post("/invitations/{token}/accept", h.Accept)
	return r
}

func asUser(req *http.Request, u *auth.User) *http.Request {
	return req.WithContext(auth.ContextWithUser(req.Context(), u))
}

func TestInvitationAccept_DefaultRole(t *testing.T) {
	store := &fakeInviteStore{
		member: &family.Member{ID: "m1", UserID: "u2", FamilyID: "f1", Role: "Parent B"},
	}
	srv := newInviteTestServer(store)

	req := httptest.NewRequest(http.MethodPost, "/invitations/tok-1/accept", nil)
	req = asUser(req, &auth.User{ID: "u2"})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.acceptedToken != "tok-1" || store.acceptedUser != "u2" {
		t.Errorf("Accept called with (%q, %q)", store.acceptedToken, store.acceptedUser)
	}
	if store.acceptedRole != "Parent B" {
		t.Errorf("role = %q, want default Parent B", store.acceptedRole)
	}
}

func TestInvitationAccept_ExplicitRole(t *testing.T) {
	store := &fakeInviteStore{member: &family.Member{ID: "m1"}}
	srv := newInviteTestServer(store)

	req := httptest.NewRequest(http.MethodPost, "/invitations/tok-1/accept",
		strings.NewReader(`{"role":"Parent A"}`))
	req = asUser(req, &auth.User{ID: "u2"})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.acceptedRole != "Parent A" {
		t.Errorf("role = %q, want Parent A", store.acceptedRole)
	}
}

func TestInvitationAccept_UnknownToken(t *testing.T) {
	store := &fakeInviteStore{acceptErr: invite.ErrNotFound}
	srv := newInviteTestServer(store)

	req := httptest.NewRequest(http.MethodPost, "/invitations/nope/accept", nil)
	req = asUser(req, &auth.User{ID: "u2"})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestInvitationAccept_AlreadyInFamily(t *testing.T) {
	// A second membership would leave the account unresolvable, so the store
	// refuses and the handler reports a conflict rather than committing.
	store := &fakeInviteStore{acceptErr: family.ErrAlreadyMember}
	srv := newInviteTestServer(store)

	req := httptest.NewRequest(http.MethodPost, "/invitations/tok-1/accept", nil)
	req = asUser(req, &auth.User{ID: "u1"})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Error.Code != "conflict" {
		t.Errorf("error code = %q, want conflict", env.Error.Code)
	}
}

func TestInvitationPreview_DoesNotEchoToken(t *testing.T) {
	store := &fakeInviteStore{
		pending: &invite.Invitation{
			ID: "i1", FamilyID: "f1", Email: "sam@example.com",
			Token: "secret-token", Status: invite.StatusPending,
			CreatedAt: time.Now(),
		},
	}
	srv := newInviteTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/invitations/secret-token", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "sam@example.com") {
		t.Error("preview missing invitee email")
	}
	if strings.Contains(body, "secret-token") {
		t.Error("preview echoes the invitation token")
	}
}

func TestInvitationPreview_ConsumedToken(t *testing.T) {
	srv := newInviteTestServer(&fakeInviteStore{})

	req := httptest.NewRequest(http.MethodGet, "/invitations/used-up", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
