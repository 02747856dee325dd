package invite

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewToken_WellFormed(t *testing.T) {
	token := NewToken()
	parsed, err := uuid.Parse(token)
	if err != nil {
		t.Fatalf("token %q is not a valid UUID: %v", token, err)
	}
	if parsed.Version() != 4 {
		t.Errorf("token version = %d, want 4 (random)", parsed.Version())
	}
}

func TestNewToken_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		token := NewToken()
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = struct{}{}
	}
}

func TestStatusValues(t *testing.T) {
	// These strings appear in the invitations.status CHECK constraint; a
	// drift here would make every insert or transition fail.
	if StatusPending != "pending" {
		t.Errorf("StatusPending = %q, want pending", StatusPending)
	}
	if StatusAccepted != "accepted" {
		t.Errorf("StatusAccepted = %q, want accepted", StatusAccepted)
	}
}
