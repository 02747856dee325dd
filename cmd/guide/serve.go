package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/Unblonde/gentle-separation-guide/internal/api"
	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/chat"
	"github.com/Unblonde/gentle-separation-guide/internal/config"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
	"github.com/Unblonde/gentle-separation-guide/internal/finance"
	"github.com/Unblonde/gentle-separation-guide/internal/holiday"
	"github.com/Unblonde/gentle-separation-guide/internal/invite"
	"github.com/Unblonde/gentle-separation-guide/internal/mail"
	"github.com/Unblonde/gentle-separation-guide/internal/metrics"
	"github.com/Unblonde/gentle-separation-guide/internal/realtime"
	"github.com/Unblonde/gentle-separation-guide/internal/user"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the guide server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	slog.Info("connected to database")

	m := metrics.New()
	m.RegisterDBPoolCollector(func() (total, idle, acquired int32) {
		stat := pool.Stat()
		return stat.TotalConns(), stat.IdleConns(), stat.AcquiredConns()
	})

	userStore := user.NewStore(pool)
	familyStore := family.NewStore(pool)
	inviteStore := invite.NewStore(pool)
	financeStore := finance.NewStore(pool)
	holidayStore := holiday.NewStore(pool)
	chatStore := chat.NewStore(pool)

	hub := realtime.NewHub(cfg.Realtime.SubscriberBuf, func() {
		m.FeedDroppedTotal.Inc()
	})
	defer hub.Close()

	listener := realtime.NewListener(pool, hub, logger, realtime.ListenerOptions{
		Channel:     cfg.Realtime.Channel,
		BackoffMin:  cfg.Realtime.BackoffMin,
		BackoffMax:  cfg.Realtime.BackoffMax,
		OnReconnect: func() { m.FeedReconnectsTotal.Inc() },
	})
	go func() {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("change feed listener stopped", "error", err)
		}
	}()

	mailer, err := mail.NewMailer(ctx, logger, cfg.Mail.AWSRegion, cfg.Mail.FromEmail, cfg.Mail.FromName, cfg.App.BaseURL)
	if err != nil {
		return err
	}

	googleOAuth := auth.NewGoogleOAuth(
		cfg.OAuth.GoogleClientID,
		cfg.OAuth.GoogleClientSecret,
		cfg.App.BaseURL+"/api/v1/auth/google/callback",
	)

	// Expired sessions are cleaned in the background rather than on login.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := userStore.CleanExpiredSessions(ctx); err == nil && n > 0 {
					slog.Info("cleaned expired sessions", "count", n)
				}
			}
		}
	}()

	router := api.NewRouter(api.RouterDeps{
		Users:          userStore,
		Families:       familyStore,
		Invitations:    inviteStore,
		Finances:       financeStore,
		Holidays:       holidayStore,
		Messages:       chatStore,
		Hub:            hub,
		Mailer:         mailer,
		OAuth:          googleOAuth,
		Metrics:        m,
		BaseURL:        cfg.App.BaseURL,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Heartbeat:      cfg.Realtime.Heartbeat,
	})

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout stays unset so SSE connections are not cut off; the
		// per-request timeout middleware bounds everything else.
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	slog.Info("shutting down")

	cancel()
	hub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
