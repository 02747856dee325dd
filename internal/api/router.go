package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/chat"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
	"github.com/Unblonde/gentle-separation-guide/internal/finance"
	"github.com/Unblonde/gentle-separation-guide/internal/holiday"
	"github.com/Unblonde/gentle-separation-guide/internal/invite"
	"github.com/Unblonde/gentle-separation-guide/internal/mail"
	"github.com/Unblonde/gentle-separation-guide/internal/metrics"
	"github.com/Unblonde/gentle-separation-guide/internal/realtime"
	"github.com/Unblonde/gentle-separation-guide/internal/ui"
	"github.com/Unblonde/gentle-separation-guide/internal/user"
)

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Users       *user.Store
	Families    *family.Store
	Invitations *invite.Store
	Finances    *finance.Store
	Holidays    *holiday.Store
	Messages    *chat.Store
	Hub         *realtime.Hub
	Mailer      *mail.Mailer
	OAuth       *auth.GoogleOAuth
	Metrics     *metrics.Metrics

	BaseURL        string
	AllowedOrigins []string
	RequestTimeout time.Duration
	Heartbeat      time.Duration
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(slogRequestLogger)
	r.Use(metricsMiddleware(deps.Metrics))
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.AllowedOrigins))

	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}

	// Handlers.
	loginLimiter := newLoginRateLimiter(10, time.Minute)
	authH := newAuthHandler(deps.Users, deps.OAuth, loginLimiter, deps.Metrics, deps.BaseURL)
	profileH := newProfileHandler(deps.Users)
	familyH := newFamilyHandler(deps.Families)
	inviteH := newInvitationHandler(deps.Invitations, deps.Families, deps.Mailer, deps.Metrics)
	financeH := newFinanceHandler(deps.Finances, deps.Families)
	holidayH := newHolidayHandler(deps.Holidays, deps.Families)
	chatH := newChatHandler(deps.Messages, deps.Families, deps.Finances, deps.Holidays, deps.Metrics)
	streamH := newStreamHandler(deps.Hub, deps.Families, deps.Finances, deps.Holidays, deps.Messages, deps.Metrics, deps.Heartbeat)

	sessionAuth := auth.SessionMiddleware(user.NewAuthAdapter(deps.Users))

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Well-known manifest.
	r.Get("/.well-known/guide.json", WellKnownHandler)

	// Metrics summary.
	r.Get("/metrics", deps.Metrics.Handler())

	// Public (unauthenticated) routes.
	r.Group(func(pr chi.Router) {
		pr.Use(timeoutMiddleware(deps.RequestTimeout))

		pr.Post("/api/v1/auth/signup", authH.Signup)
		pr.Post("/api/v1/auth/login", authH.Login)
		pr.Get("/api/v1/auth/google", authH.GoogleStart)
		pr.Get("/api/v1/auth/google/callback", authH.GoogleCallback)
		pr.Get("/api/v1/invitations/{token}", inviteH.Preview)
	})

	// Session-authed routes.
	r.Route("/api/v1", func(ar chi.Router) {
		ar.Use(sessionAuth)
		ar.Use(timeoutMiddleware(deps.RequestTimeout))

		ar.Get("/auth/me", authH.Me)
		ar.Post("/auth/logout", authH.Logout)

		ar.Get("/profile", profileH.Get)
		ar.Patch("/profile", profileH.Update)

		ar.Get("/family", familyH.Get)
		ar.Post("/family", familyH.Create)

		ar.Post("/invitations", inviteH.Create)
		ar.Get("/invitations", inviteH.List)
		ar.Post("/invitations/{token}/accept", inviteH.Accept)

		ar.Get("/finances", financeH.List)
		ar.Post("/finances", financeH.Create)
		ar.Patch("/finances/{id}", financeH.Update)

		ar.Get("/holidays", holidayH.List)
		ar.Post("/holidays", holidayH.Create)
		ar.Patch("/holidays/{id}", holidayH.Update)
		ar.Delete("/holidays/{id}", holidayH.Delete)

		ar.Get("/chat/messages", chatH.List)
		ar.Post("/chat/messages", chatH.Send)
	})

	// The change feed holds its connection open, so it stays outside the
	// request timeout group.
	r.Group(func(sr chi.Router) {
		sr.Use(sessionAuth)
		sr.Get("/api/v1/stream/{table}", streamH.Stream)
	})

	// App shell. Client-side routes all serve the same page.
	shell := ui.Handler()
	for _, path := range []string{
		"/", "/parenting-plan", "/finances", "/help", "/profile",
		"/auth", "/auth/callback", "/invite/{token}",
	} {
		r.Get(path, shell.ServeHTTP)
	}

	return r
}
