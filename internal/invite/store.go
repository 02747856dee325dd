package invite

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Unblonde/gentle-separation-guide/internal/family"
)

// ErrNotFound covers both "unknown token" and "already accepted": the lookup
// is always by (token, status=pending), so the two cases are deliberately
// indistinguishable to the caller.
var ErrNotFound = errors.New("invitation not found or already accepted")

// Store provides database operations for the invitation workflow.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new invitation store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const invitationColumns = `id, family_id, invited_by, email, token, status, created_at`

func scanInvitation(row pgx.Row) (*Invitation, error) {
	inv := &Invitation{}
	err := row.Scan(&inv.ID, &inv.FamilyID, &inv.InvitedBy, &inv.Email,
		&inv.Token, &inv.Status, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Create issues a fresh single-use invitation token for the family. Inviting
// the same email twice produces two independent pending invitations; callers
// deliver the token out of band.
func (s *Store) Create(ctx context.Context, in CreateInvitationInput) (*Invitation, error) {
	inv, err := scanInvitation(s.pool.QueryRow(ctx,
		`INSERT INTO invitations (family_id, invited_by, email, token, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+invitationColumns,
		in.FamilyID, in.InvitedBy, in.Email, NewToken(), StatusPending,
	))
	if err != nil {
		return nil, fmt.Errorf("creating invitation: %w", err)
	}
	return inv, nil
}

// GetPending looks up a pending invitation by its token.
func (s *Store) GetPending(ctx context.Context, token string) (*Invitation, error) {
	inv, err := scanInvitation(s.pool.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE token = $1 AND status = $2`, token, StatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting invitation: %w", err)
	}
	return inv, nil
}

// ListByFamily returns all invitations for the family, newest first.
func (s *Store) ListByFamily(ctx context.Context, familyID string) ([]*Invitation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE family_id = $1 ORDER BY created_at DESC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	defer rows.Close()

	var invs []*Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invitation: %w", err)
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// Accept redeems a pending invitation: it creates the membership row and
// flips the invitation to accepted inside one transaction, so a crash can
// never leave a consumed token without its membership (or the reverse). The
// pending row is locked to serialize concurrent redemption attempts; the
// loser of the race sees ErrNotFound.
//
// A user who already belongs to any family cannot accept: memberships are
// exclusive, and a second one would leave the account unresolvable. The
// explicit check gives a clean error and leaves the token pending; the
// family_members.user_id UNIQUE constraint closes the remaining race.
func (s *Store) Accept(ctx context.Context, token, userID, role string) (*family.Member, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := scanInvitation(tx.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE token = $1 AND status = $2
		 FOR UPDATE`, token, StatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("locking invitation: %w", err)
	}

	var hasMembership bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM family_members WHERE user_id = $1)`,
		userID,
	).Scan(&hasMembership)
	if err != nil {
		return nil, fmt.Errorf("checking existing membership: %w", err)
	}
	if hasMembership {
		return nil, family.ErrAlreadyMember
	}

	m := &family.Member{}
	err = tx.QueryRow(ctx,
		`INSERT INTO family_members (user_id, family_id, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, family_id, role, created_at`,
		userID, inv.FamilyID, role,
	).Scan(&m.ID, &m.UserID, &m.FamilyID, &m.Role, &m.CreatedAt)
	if err != nil {
		if family.IsUniqueViolation(err) {
			return nil, family.ErrAlreadyMember
		}
		return nil, fmt.Errorf("creating family member: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE invitations SET status = $1 WHERE id = $2`, StatusAccepted, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("marking invitation accepted: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing invitation acceptance: %w", err)
	}
	return m, nil
}
