package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Listener holds one dedicated database connection on LISTEN and feeds
// decoded change events into the hub. It reconnects with capped exponential
// backoff; events emitted while disconnected are lost, which is why feed
// consumers always start from an authoritative read.
type Listener struct {
	pool    *pgxpool.Pool
	hub     *Hub
	channel string
	logger  *slog.Logger

	backoffMin time.Duration
	backoffMax time.Duration

	onReconnect func()
}

// ListenerOptions configures a Listener.
type ListenerOptions struct {
	Channel     string
	BackoffMin  time.Duration
	BackoffMax  time.Duration
	OnReconnect func()
}

// NewListener creates a listener on the given notification channel.
func NewListener(pool *pgxpool.Pool, hub *Hub, logger *slog.Logger, opts ListenerOptions) *Listener {
	if opts.Channel == "" {
		opts.Channel = "family_changes"
	}
	if opts.BackoffMin <= 0 {
		opts.BackoffMin = time.Second
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = 30 * time.Second
	}
	return &Listener{
		pool:        pool,
		hub:         hub,
		channel:     opts.Channel,
		logger:      logger,
		backoffMin:  opts.BackoffMin,
		backoffMax:  opts.BackoffMax,
		onReconnect: opts.OnReconnect,
	}
}

// Run listens for notifications until the context is cancelled. Connection
// failures are retried; it only returns on cancellation.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.backoffMin

	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		l.logger.Error("change feed connection lost, reconnecting",
			"channel", l.channel, "backoff", backoff, "error", err)
		if l.onReconnect != nil {
			l.onReconnect()
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff *= 2
		if backoff > l.backoffMax {
			backoff = l.backoffMax
		}
	}
}

// listen acquires a connection, issues LISTEN and blocks on notifications
// until the connection or context fails. The acquired connection is held
// for the whole session; LISTEN state dies with it.
func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+l.channel); err != nil {
		return fmt.Errorf("starting LISTEN on %s: %w", l.channel, err)
	}
	l.logger.Info("change feed listening", "channel", l.channel)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("waiting for notification: %w", err)
		}

		ev, err := ParsePayload(notification.Payload)
		if err != nil {
			l.logger.Warn("dropping malformed change payload", "error", err)
			continue
		}
		l.hub.Publish(ev)
	}
}
