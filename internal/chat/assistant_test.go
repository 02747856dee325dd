package chat

import (
	"strings"
	"testing"
)

func TestIsBlocked(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"clean message", "how do I plan a holiday?", false},
		{"blocked word", "he will hurt me", true},
		{"blocked word uppercase", "ABUSE of process", true},
		{"blocked as substring", "this is hurtful", true},
		{"empty message", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBlocked(tt.message); got != tt.want {
				t.Errorf("IsBlocked(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestReplyKeywords(t *testing.T) {
	stats := FamilyStats{UpcomingHolidays: 3, AgreedFinancial: 2, DisagreedFinancial: 1}

	tests := []struct {
		name     string
		message  string
		contains string
	}{
		{"holiday", "can we talk about the summer holiday?", "3 upcoming holiday arrangements"},
		{"vacation", "planning a VACATION", "3 upcoming holiday arrangements"},
		{"mediation", "should we try mediation?", "Family Mediation Council"},
		{"money", "worried about money", "2 agreed items and 1 items"},
		{"court", "what about going to court?", "last resort"},
		{"fallback", "hello there", "parenting arrangements, financial matters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reply(tt.message, stats)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Reply(%q) = %q, want it to contain %q", tt.message, got, tt.contains)
			}
		})
	}
}

func TestReplyFirstRuleWins(t *testing.T) {
	// A message hitting both the holiday and money rules is answered as a
	// holiday question.
	got := Reply("holiday money", FamilyStats{UpcomingHolidays: 1})
	if !strings.Contains(got, "holiday arrangements") {
		t.Errorf("Reply = %q, want holiday response", got)
	}
}
