package user

import (
	"context"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
)

// AuthAdapter adapts the user Store to the auth.SessionLookup interface.
type AuthAdapter struct {
	store *Store
}

// NewAuthAdapter creates an adapter around the given store.
func NewAuthAdapter(store *Store) *AuthAdapter {
	return &AuthAdapter{store: store}
}

// LookupSession resolves a plaintext session token to an authenticated user.
func (a *AuthAdapter) LookupSession(ctx context.Context, token string) (*auth.User, error) {
	u, fullName, err := a.store.GetSessionUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return &auth.User{
		ID:       u.ID,
		Email:    u.Email,
		FullName: fullName,
	}, nil
}
