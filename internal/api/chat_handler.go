package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
	"github.com/Unblonde/gentle-separation-guide/internal/chat"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
	"github.com/Unblonde/gentle-separation-guide/internal/finance"
	"github.com/Unblonde/gentle-separation-guide/internal/holiday"
	"github.com/Unblonde/gentle-separation-guide/internal/metrics"
)

// chatHandler groups chat HTTP handlers and drives the keyword assistant.
type chatHandler struct {
	store    *chat.Store
	families *family.Store
	finances *finance.Store
	holidays *holiday.Store
	metrics  *metrics.Metrics
}

func newChatHandler(store *chat.Store, families *family.Store, finances *finance.Store, holidays *holiday.Store, m *metrics.Metrics) *chatHandler {
	return &chatHandler{store: store, families: families, finances: finances, holidays: holidays, metrics: m}
}

// List handles GET /api/v1/chat/messages. An empty conversation is seeded
// with the assistant's greeting so the help page never opens blank.
func (h *chatHandler) List(w http.ResponseWriter, r *http.Request) {
	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	messages, err := h.store.ListByFamily(r.Context(), fam.FamilyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list chat messages")
		return
	}

	if len(messages) == 0 {
		greeting, err := h.store.Create(r.Context(), chat.CreateMessageInput{
			FamilyID:    fam.FamilyID,
			IsAssistant: true,
			Content:     chat.Greeting,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to start conversation")
			return
		}
		messages = []*chat.Message{greeting}
	}

	writeJSON(w, http.StatusOK, messages)
}

// Send handles POST /api/v1/chat/messages. The user's message is stored
// first, then the assistant's reply, so the conversation reads in order
// even if the reply insert fails.
func (h *chatHandler) Send(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	fam, ok := resolveFamily(w, r, h.families)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeValidationError(w, "message content is required")
		return
	}
	if err := chat.ValidateContent(req.Content); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if chat.IsBlocked(req.Content) {
		h.metrics.BlockedMessagesTotal.Inc()
		writeError(w, http.StatusUnprocessableEntity, "content_blocked",
			"your message appears to discuss harm and was not sent; if you are worried about safety, please contact support services")
		return
	}

	userMsg, err := h.store.Create(r.Context(), chat.CreateMessageInput{
		FamilyID: fam.FamilyID,
		SenderID: &u.ID,
		Content:  req.Content,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to send message")
		return
	}

	reply := chat.Reply(req.Content, h.familyStats(r, fam.FamilyID))
	assistantMsg, err := h.store.Create(r.Context(), chat.CreateMessageInput{
		FamilyID:    fam.FamilyID,
		IsAssistant: true,
		Content:     reply,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to store assistant reply")
		return
	}
	h.metrics.AssistantRepliesTotal.WithLabelValues(chat.Topic(req.Content)).Inc()

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": userMsg,
		"reply":   assistantMsg,
	})
}

// familyStats gathers live counts for the assistant's replies. Failures
// degrade to zero counts rather than failing the chat request.
func (h *chatHandler) familyStats(r *http.Request, familyID string) chat.FamilyStats {
	var stats chat.FamilyStats

	holidays, err := h.holidays.ListByFamily(r.Context(), familyID)
	if err != nil {
		slog.Warn("assistant stats: holidays unavailable", "error", err)
	}
	now := time.Now()
	for _, a := range holidays {
		if a.EndDate.After(now) {
			stats.UpcomingHolidays++
		}
	}

	finances, err := h.finances.ListByFamily(r.Context(), familyID)
	if err != nil {
		slog.Warn("assistant stats: finances unavailable", "error", err)
	}
	for _, a := range finances {
		switch a.Status {
		case finance.StatusAgreed:
			stats.AgreedFinancial++
		case finance.StatusDisagreed:
			stats.DisagreedFinancial++
		}
	}
	return stats
}
