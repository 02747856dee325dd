package chat

import (
	"errors"
	"time"
)

// MaxContentLength bounds a message body in bytes. The change-feed trigger
// serializes whole rows into NOTIFY payloads, which Postgres caps at 8000
// bytes; this keeps a chat row comfortably inside that.
const MaxContentLength = 4000

// ErrContentTooLong is returned for a message body over MaxContentLength.
var ErrContentTooLong = errors.New("message content is too long")

// ValidateContent checks a user-supplied message body before persistence.
func ValidateContent(content string) error {
	if len(content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// Message is one entry in a family's support conversation. SenderID is nil
// for assistant replies; SenderName is joined from the sender's profile and
// empty for the assistant.
type Message struct {
	ID          string    `json:"id"`
	FamilyID    string    `json:"family_id"`
	SenderID    *string   `json:"sender_id"`
	SenderName  string    `json:"sender_name,omitempty"`
	IsAssistant bool      `json:"is_assistant"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateMessageInput holds the fields for a new chat message.
type CreateMessageInput struct {
	FamilyID    string
	SenderID    *string
	IsAssistant bool
	Content     string
}
