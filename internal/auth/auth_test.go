package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateSessionToken(t *testing.T) {
	plaintext, hash, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 32 random bytes hex-encoded.
	if len(plaintext) != 64 {
		t.Errorf("expected 64-char plaintext, got %d chars", len(plaintext))
	}
	if hash != HashToken(plaintext) {
		t.Error("returned hash does not match HashToken(plaintext)")
	}
	if hash == plaintext {
		t.Error("hash must differ from plaintext")
	}
}

func TestGenerateSessionToken_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 50)
	for i := 0; i < 50; i++ {
		plaintext, _, err := GenerateSessionToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, dup := seen[plaintext]; dup {
			t.Fatal("duplicate token generated")
		}
		seen[plaintext] = struct{}{}
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Error("hash must be deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Error("different inputs must not collide")
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name string
		auth string
		want string
	}{
		{"valid bearer", "Bearer my-token-123", "my-token-123"},
		{"empty header", "", ""},
		{"no space", "Bearertoken", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"case insensitive scheme", "bearer abc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			got := ExtractBearerToken(req)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBearerToken_QueryFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?access_token=qt-123", nil)
	if got := ExtractBearerToken(req); got != "qt-123" {
		t.Errorf("got %q, want qt-123", got)
	}

	// The header wins when both are present.
	req.Header.Set("Authorization", "Bearer hdr-456")
	if got := ExtractBearerToken(req); got != "hdr-456" {
		t.Errorf("got %q, want hdr-456", got)
	}
}

// fakeSessions implements SessionLookup for middleware tests.
type fakeSessions struct {
	user *User
	err  error
}

func (f *fakeSessions) LookupSession(_ context.Context, token string) (*User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func TestSessionMiddleware_InjectsUser(t *testing.T) {
	want := &User{ID: "u1", Email: "a@example.com", FullName: "Parent A"}
	mw := SessionMiddleware(&fakeSessions{user: want})

	var got *User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.ID != want.ID {
		t.Errorf("expected user %v in context, got %v", want, got)
	}
}

func TestSessionMiddleware_MissingToken(t *testing.T) {
	mw := SessionMiddleware(&fakeSessions{user: &User{ID: "u1"}})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_InvalidSession(t *testing.T) {
	mw := SessionMiddleware(&fakeSessions{err: errors.New("no such session")})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called with an invalid session")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	if u := UserFromContext(context.Background()); u != nil {
		t.Errorf("expected nil user from bare context, got %v", u)
	}
}
