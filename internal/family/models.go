package family

import "time"

// Unit is the scope grouping a set of co-parents and their shared records.
// Created once, never mutated.
type Unit struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Member binds a user to a family unit with a role label ("Parent A",
// "Parent B"). At most one row exists per user; a membership is exclusive.
type Member struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FamilyID  string    `json:"family_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Data bundles everything a caller needs to act within a family scope:
// the family id, the unit row, and all member rows, so "the other parent"
// can be determined without a second round trip.
type Data struct {
	FamilyID string   `json:"family_id"`
	Unit     Unit     `json:"family_unit"`
	Members  []Member `json:"family_members"`
}
