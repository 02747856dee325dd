package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"short message", "hello", nil},
		{"at limit", strings.Repeat("a", MaxContentLength), nil},
		{"over limit", strings.Repeat("a", MaxContentLength+1), ErrContentTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateContent() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
