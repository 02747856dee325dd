package holiday

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateCreate(t *testing.T) {
	start := date(2026, time.July, 20)
	end := date(2026, time.July, 27)

	tests := []struct {
		name    string
		input   CreateArrangementInput
		wantErr error
	}{
		{"valid", CreateArrangementInput{Name: "Summer week", StartDate: start, EndDate: end}, nil},
		{"single day", CreateArrangementInput{Name: "Handover", StartDate: start, EndDate: start}, nil},
		{"missing name", CreateArrangementInput{StartDate: start, EndDate: end}, ErrNameRequired},
		{"missing dates", CreateArrangementInput{Name: "Summer"}, ErrDatesRequired},
		{"inverted dates", CreateArrangementInput{Name: "Summer", StartDate: end, EndDate: start}, ErrDatesInverted},
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
	start := date(2026, time.July, 20)
	end := date(2026, time.July, 27)
	empty := ""
	name := "New name"

	tests := []struct {
		name    string
		input   UpdateArrangementInput
		wantErr error
	}{
		{"empty update", UpdateArrangementInput{}, nil},
		{"name only", UpdateArrangementInput{Name: &name}, nil},
		{"cleared name", UpdateArrangementInput{Name: &empty}, ErrNameRequired},
		{"both dates ordered", UpdateArrangementInput{StartDate: &start, EndDate: &end}, nil},
		{"both dates inverted", UpdateArrangementInput{StartDate: &end, EndDate: &start}, ErrDatesInverted},
		// A single new date cannot be cross-checked without a read.
		{"start date alone", UpdateArrangementInput{StartDate: &end}, nil},
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
