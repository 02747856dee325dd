package finance

import (
	"errors"
	"strings"
	"time"
)

// Arrangement statuses: each row is one negotiable topic that the parents
// either agree on, disagree on, or have not yet reviewed.
const (
	StatusAgreed     = "agreed"
	StatusDisagreed  = "disagreed"
	StatusUnreviewed = "unreviewed"
)

// MaxFieldLength bounds each free-text field in bytes. The change-feed
// trigger serializes whole rows into NOTIFY payloads, which Postgres caps
// at 8000 bytes; four fields at this bound still fit with room to spare.
const MaxFieldLength = 1500

// Validation errors returned before any database call.
var (
	ErrCategoryRequired = errors.New("category is required")
	ErrStatusInvalid    = errors.New("status must be one of: agreed, disagreed, unreviewed")
	ErrFieldTooLong     = errors.New("field exceeds the maximum length")
)

var validStatuses = map[string]bool{
	StatusAgreed:     true,
	StatusDisagreed:  true,
	StatusUnreviewed: true,
}

// Arrangement is one financial topic with two independently editable view
// fields, one per parental role. Either parent may edit either view.
type Arrangement struct {
	ID          string    `json:"id"`
	FamilyID    string    `json:"family_id"`
	CreatedBy   string    `json:"created_by"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ParentA     string    `json:"parent_a"`
	ParentB     string    `json:"parent_b"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateArrangementInput holds the fields for a new financial topic.
type CreateArrangementInput struct {
	FamilyID    string `json:"family_id"`
	CreatedBy   string `json:"created_by"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ParentA     string `json:"parent_a"`
	ParentB     string `json:"parent_b"`
	Status      string `json:"status"`
}

// UpdateArrangementInput holds optional fields for a partial update. A nil
// field is left untouched; this is the typed replacement for the loose
// update payloads the gateway would otherwise accept.
type UpdateArrangementInput struct {
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	ParentA     *string `json:"parent_a,omitempty"`
	ParentB     *string `json:"parent_b,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ValidateCreate checks required fields, field lengths, and the status value.
func ValidateCreate(in CreateArrangementInput) error {
	if strings.TrimSpace(in.Category) == "" {
		return ErrCategoryRequired
	}
	for _, field := range []string{in.Category, in.Description, in.ParentA, in.ParentB} {
		if len(field) > MaxFieldLength {
			return ErrFieldTooLong
		}
	}
	if in.Status != "" && !validStatuses[in.Status] {
		return ErrStatusInvalid
	}
	return nil
}

// ValidateUpdate checks any provided fields.
func ValidateUpdate(in UpdateArrangementInput) error {
	if in.Category != nil && strings.TrimSpace(*in.Category) == "" {
		return ErrCategoryRequired
	}
	for _, field := range []*string{in.Category, in.Description, in.ParentA, in.ParentB} {
		if field != nil && len(*field) > MaxFieldLength {
			return ErrFieldTooLong
		}
	}
	if in.Status != nil && !validStatuses[*in.Status] {
		return ErrStatusInvalid
	}
	return nil
}
