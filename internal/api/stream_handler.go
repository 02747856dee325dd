package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Unblonde/gentle-separation-guide/internal/chat"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
	"github.com/Unblonde/gentle-separation-guide/internal/finance"
	"github.com/Unblonde/gentle-separation-guide/internal/holiday"
	"github.com/Unblonde/gentle-separation-guide/internal/metrics"
	"github.com/Unblonde/gentle-separation-guide/internal/realtime"
)

// streamHandler serves family-scoped change feeds over server-sent events.
// Each connection starts with an authoritative snapshot read, then folds
// incremental change events into it; the fold is idempotent so events that
// raced the snapshot cannot corrupt the view.
type streamHandler struct {
	hub       *realtime.Hub
	families  *family.Store
	finances  *finance.Store
	holidays  *holiday.Store
	messages  *chat.Store
	metrics   *metrics.Metrics
	heartbeat time.Duration
}

func newStreamHandler(hub *realtime.Hub, families *family.Store, finances *finance.Store, holidays *holiday.Store, messages *chat.Store, m *metrics.Metrics, heartbeat time.Duration) *streamHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &streamHandler{
		hub:       hub,
		families:  families,
		finances:  finances,
		holidays:  holidays,
		messages:  messages,
		metrics:   m,
		heartbeat: heartbeat,
	}
}

// Stream handles GET /api/v1/stream/{table}.
func (h *streamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !realtime.WatchableTable(table) {
		writeError(w, http.StatusNotFound, "not_found", "no change feed for that table")
		return
	}

	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", "streaming not supported")
		return
	}

	// Subscribe before the snapshot read so no change can fall between
	// them; anything double-counted is absorbed by the idempotent fold.
	sub := h.hub.Subscribe(table, fam.FamilyID)
	defer h.hub.Unsubscribe(sub)
	h.metrics.FeedSubscribers.Inc()
	defer h.metrics.FeedSubscribers.Dec()

	view, err := h.snapshot(r.Context(), table, fam.FamilyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load snapshot")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeSSE(w, "snapshot", view.Rows())
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			if !view.Apply(ev) {
				continue
			}
			h.metrics.IncFeedEvent(table)
			writeSSE(w, "change", map[string]interface{}{
				"op":     ev.Op,
				"record": ev.Record,
				"rows":   view.Rows(),
			})
			flusher.Flush()
		}
	}
}

// snapshot performs the initial authoritative read for one table.
func (h *streamHandler) snapshot(ctx context.Context, table, familyID string) (*realtime.View, error) {
	var rows []json.RawMessage

	switch table {
	case realtime.TableFinancial:
		arrangements, err := h.finances.ListByFamily(ctx, familyID)
		if err != nil {
			return nil, err
		}
		rows, err = marshalRows(arrangements)
		if err != nil {
			return nil, err
		}
	case realtime.TableHoliday:
		arrangements, err := h.holidays.ListByFamily(ctx, familyID)
		if err != nil {
			return nil, err
		}
		rows, err = marshalRows(arrangements)
		if err != nil {
			return nil, err
		}
	case realtime.TableChat:
		messages, err := h.messages.ListByFamily(ctx, familyID)
		if err != nil {
			return nil, err
		}
		rows, err = marshalRows(messages)
		if err != nil {
			return nil, err
		}
	}
	return realtime.NewView(rows), nil
}

func marshalRows[T any](items []T) ([]json.RawMessage, error) {
	rows := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		rows = append(rows, b)
	}
	return rows, nil
}

// writeSSE emits one named server-sent event with a JSON payload.
func writeSSE(w http.ResponseWriter, event string, data interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
}
