package holiday

import (
	"errors"
	"strings"
	"time"
)

// Validation errors returned before any database call.
var (
	ErrNameRequired  = errors.New("name is required")
	ErrDatesRequired = errors.New("start_date and end_date are required")
	ErrDatesInverted = errors.New("end_date must not be before start_date")
)

// Arrangement is one planned period of care, such as a school holiday or a
// weekend away. Dates are calendar dates; handover details are free text
// because the parents write them for each other, not for machines.
type Arrangement struct {
	ID              string    `json:"id"`
	FamilyID        string    `json:"family_id"`
	CreatedBy       string    `json:"created_by"`
	Name            string    `json:"name"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	WithParent      string    `json:"with_parent"`
	Location        string    `json:"location"`
	PickupTime      string    `json:"pickup_time"`
	PickupLocation  string    `json:"pickup_location"`
	DropoffTime     string    `json:"dropoff_time"`
	DropoffLocation string    `json:"dropoff_location"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateArrangementInput holds the fields for a new holiday entry.
type CreateArrangementInput struct {
	FamilyID        string    `json:"family_id"`
	CreatedBy       string    `json:"created_by"`
	Name            string    `json:"name"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	WithParent      string    `json:"with_parent"`
	Location        string    `json:"location"`
	PickupTime      string    `json:"pickup_time"`
	PickupLocation  string    `json:"pickup_location"`
	DropoffTime     string    `json:"dropoff_time"`
	DropoffLocation string    `json:"dropoff_location"`
}

// UpdateArrangementInput holds optional fields for a partial update.
type UpdateArrangementInput struct {
	Name            *string    `json:"name,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	WithParent      *string    `json:"with_parent,omitempty"`
	Location        *string    `json:"location,omitempty"`
	PickupTime      *string    `json:"pickup_time,omitempty"`
	PickupLocation  *string    `json:"pickup_location,omitempty"`
	DropoffTime     *string    `json:"dropoff_time,omitempty"`
	DropoffLocation *string    `json:"dropoff_location,omitempty"`
}

// ValidateCreate checks required fields and date ordering.
func ValidateCreate(in CreateArrangementInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return ErrDatesRequired
	}
	if in.EndDate.Before(in.StartDate) {
		return ErrDatesInverted
	}
	return nil
}

// ValidateUpdate checks any provided fields. Date ordering is only checked
// when both dates are supplied; cross-checking one new date against the
// stored other half would need a read first and is left to the caller.
func ValidateUpdate(in UpdateArrangementInput) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return ErrNameRequired
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return ErrDatesInverted
	}
	return nil
}
