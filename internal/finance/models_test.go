package finance

import (
	"errors"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateArrangementInput
		wantErr error
	}{
		{"valid", CreateArrangementInput{Category: "Child maintenance", Status: StatusAgreed}, nil},
		{"empty status defaults later", CreateArrangementInput{Category: "School costs"}, nil},
		{"missing category", CreateArrangementInput{Status: StatusAgreed}, ErrCategoryRequired},
		{"whitespace category", CreateArrangementInput{Category: "   "}, ErrCategoryRequired},
		{"bad status", CreateArrangementInput{Category: "Travel", Status: "maybe"}, ErrStatusInvalid},
		{"description at limit", CreateArrangementInput{Category: "Travel", Description: strings.Repeat("a", MaxFieldLength)}, nil},
		{"description over limit", CreateArrangementInput{Category: "Travel", Description: strings.Repeat("a", MaxFieldLength+1)}, ErrFieldTooLong},
		{"parent view over limit", CreateArrangementInput{Category: "Travel", ParentB: strings.Repeat("b", MaxFieldLength+1)}, ErrFieldTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreate(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCreate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name    string
		input   UpdateArrangementInput
		wantErr error
	}{
		{"empty update", UpdateArrangementInput{}, nil},
		{"valid status", UpdateArrangementInput{Status: strPtr(StatusDisagreed)}, nil},
		{"bad status", UpdateArrangementInput{Status: strPtr("pending")}, ErrStatusInvalid},
		{"category cleared", UpdateArrangementInput{Category: strPtr("")}, ErrCategoryRequired},
		{"views only", UpdateArrangementInput{ParentA: strPtr("new view"), ParentB: strPtr("")}, nil},
		{"view over limit", UpdateArrangementInput{ParentA: strPtr(strings.Repeat("a", MaxFieldLength+1))}, ErrFieldTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdate(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUpdate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
