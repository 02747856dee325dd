package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Unblonde/gentle-separation-guide/internal/chat"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
	"github.com/Unblonde/gentle-separation-guide/internal/finance"
	"github.com/Unblonde/gentle-separation-guide/internal/holiday"
	"github.com/Unblonde/gentle-separation-guide/internal/invite"
	"github.com/Unblonde/gentle-separation-guide/internal/metrics"
	"github.com/Unblonde/gentle-separation-guide/internal/realtime"
	"github.com/Unblonde/gentle-separation-guide/internal/user"
)

// newTestRouter builds a router with nil-pool stores. Routes that reach the
// database cannot be exercised here; middleware, static routes, and auth
// rejection can.
func newTestRouter() http.Handler {
	return NewRouter(RouterDeps{
		Users:          user.NewStore(nil),
		Families:       family.NewStore(nil),
		Invitations:    invite.NewStore(nil),
		Finances:       finance.NewStore(nil),
		Holidays:       holiday.NewStore(nil),
		Messages:       chat.NewStore(nil),
		Hub:            realtime.NewHub(4, nil),
		Metrics:        metrics.New(),
		BaseURL:        "http://localhost:8080",
		AllowedOrigins: []string{"http://localhost:5173"},
	})
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestWellKnownHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/.well-known/guide.json", nil)
	rec := httptest.NewRecorder()
	WellKnownHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var manifest struct {
		Name      string            `json:"name"`
		APIBase   string            `json:"api_base"`
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &manifest); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if manifest.APIBase != "/api/v1" {
		t.Errorf("api_base = %q, want /api/v1", manifest.APIBase)
	}
	for _, key := range []string{"family", "invitations", "finances", "holidays", "chat", "stream"} {
		if manifest.Endpoints[key] == "" {
			t.Errorf("manifest missing endpoint %q", key)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		origin      string
		wantAllowed string
	}{
		{"allowed origin echoed", []string{"http://localhost:5173"}, "http://localhost:5173", "http://localhost:5173"},
		{"wildcard", []string{"*"}, "http://example.com", "*"},
		{"disallowed origin omitted", []string{"http://localhost:5173"}, "http://evil.example", ""},
		{"no origin header", []string{"http://localhost:5173"}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := corsMiddleware(tt.origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllowed)
			}
		})
	}
}

func TestCORSMiddleware_PreflightDoesNotCallNext(t *testing.T) {
	called := false
	handler := corsMiddleware([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/family", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Error("next handler called for preflight request")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestSecureHeaders(t *testing.T) {
	handler := secureHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var captured string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if captured == "" {
		t.Fatal("no request ID in context")
	}
	if rec.Header().Get("X-Request-ID") != captured {
		t.Error("response header does not match context value")
	}
	if len(captured) != 32 {
		t.Errorf("generated ID length = %d, want 32", len(captured))
	}
}

func TestRequestIDMiddleware_ForwardsExistingID(t *testing.T) {
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("X-Request-ID = %q, want client-supplied-id", got)
	}
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := RequestIDFromContext(req.Context()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestLoginRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := newLoginRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.allow("1.2.3.4")
		if !allowed {
			t.Fatalf("attempt %d denied, want allowed", i+1)
		}
	}

	allowed, retryAfter := rl.allow("1.2.3.4")
	if allowed {
		t.Error("fourth attempt allowed, want denied")
	}
	if retryAfter < 1 {
		t.Errorf("retryAfter = %d, want >= 1", retryAfter)
	}
}

func TestLoginRateLimiter_SeparateIPs(t *testing.T) {
	rl := newLoginRateLimiter(2, time.Minute)

	rl.allow("10.0.0.1")
	rl.allow("10.0.0.1")

	allowed, _ := rl.allow("10.0.0.1")
	if allowed {
		t.Error("exhausted IP allowed")
	}

	allowed, _ = rl.allow("10.0.0.2")
	if !allowed {
		t.Error("fresh IP denied")
	}
}

func TestLoginRateLimiter_WindowResets(t *testing.T) {
	rl := newLoginRateLimiter(1, 10*time.Millisecond)

	allowed, _ := rl.allow("1.2.3.4")
	if !allowed {
		t.Fatal("first attempt denied")
	}
	allowed, _ = rl.allow("1.2.3.4")
	if allowed {
		t.Fatal("second attempt in window allowed")
	}

	time.Sleep(15 * time.Millisecond)
	allowed, _ = rl.allow("1.2.3.4")
	if !allowed {
		t.Error("attempt after window reset denied")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "not_found", "thing not found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Error.Code != "not_found" || env.Error.Message != "thing not found" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestReadJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	if err := readJSON(httptest.NewRecorder(), req, &v); err != nil {
		t.Fatalf("valid body: %v", err)
	}
	if v.Name != "x" {
		t.Errorf("name = %q, want x", v.Name)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{invalid`))
	if err := readJSON(httptest.NewRecorder(), req, &v); err == nil {
		t.Error("expected error for invalid JSON")
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(nil))
	if err := readJSON(httptest.NewRecorder(), req, &v); err == nil {
		t.Error("expected error for empty body")
	}
}

func TestReadJSON_BodyTooLarge(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	oversized := `{"name":"` + strings.Repeat("a", maxBodySize+1) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(oversized))
	if err := readJSON(httptest.NewRecorder(), req, &v); err == nil {
		t.Error("expected error for body over the size limit")
	}
}

func TestWriteValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeValidationError(rec, "category is required")

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Error.Code != "validation_error" {
		t.Errorf("error code = %q, want validation_error", env.Error.Code)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := generateID(), generateID()
	if len(a) != 32 {
		t.Errorf("length = %d, want 32", len(a))
	}
	if a == b {
		t.Error("two generated IDs are equal")
	}
}

func TestRouter_AuthedRoutesRequireSession(t *testing.T) {
	r := newTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/family"},
		{http.MethodGet, "/api/v1/finances"},
		{http.MethodGet, "/api/v1/holidays"},
		{http.MethodGet, "/api/v1/chat/messages"},
		{http.MethodGet, "/api/v1/stream/chat_messages"},
		{http.MethodPost, "/api/v1/invitations"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestRouter_GoogleRoutesDisabledWithoutConfig(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when google sign-in unconfigured", rec.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound && rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 404 or 401", rec.Code)
	}
}

func TestRouter_ServesAppShell(t *testing.T) {
	r := newTestRouter()
	for _, path := range []string{"/", "/finances", "/help", "/invite/some-token"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rec.Code)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("GET %s: content type = %q, want text/html", path, ct)
		}
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var summary map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("metrics summary is not valid JSON: %v", err)
	}
	for _, section := range []string{"http", "feed", "auth", "server"} {
		if _, ok := summary[section]; !ok {
			t.Errorf("metrics summary missing %q section", section)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:45310"
	if got := clientIP(req); got != "192.0.2.7" {
		t.Errorf("clientIP = %q, want 192.0.2.7", got)
	}

	req.RemoteAddr = "no-port"
	if got := clientIP(req); got != "no-port" {
		t.Errorf("clientIP = %q, want raw value", got)
	}
}
