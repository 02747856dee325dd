package invite

import (
	"time"

	"github.com/google/uuid"
)

// Invitation statuses. An invitation is created pending and becomes
// permanently inert once accepted; there is no expiry or revocation.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// Invitation is a single-use grant of family membership. The token is a
// bearer secret: anyone holding it may join the family, so it is only ever
// returned to the inviter (and optionally emailed to the invitee).
type Invitation struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"family_id"`
	InvitedBy string    `json:"invited_by"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInvitationInput holds the fields required to invite a co-parent.
type CreateInvitationInput struct {
	FamilyID  string `json:"family_id"`
	InvitedBy string `json:"invited_by"`
	Email     string `json:"email"`
}

// NewToken mints an invitation token: a random v4 UUID, so 122 bits of
// entropy in a shape that survives being pasted into a URL.
func NewToken() string {
	return uuid.NewString()
}
