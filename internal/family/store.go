package family

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a family lookup matches no row.
	ErrNotFound = errors.New("family not found")
	// ErrAlreadyMember is returned when a user who already has a membership
	// row tries to gain another one, whether in the same family or a
	// different one. The family_members.user_id UNIQUE constraint backs it.
	ErrAlreadyMember = errors.New("user already belongs to a family")
	// ErrMultipleFamilies signals a data integrity problem: the design
	// supports exactly one family per user, so more than one membership row
	// is reported rather than silently picking the first.
	ErrMultipleFamilies = errors.New("user belongs to more than one family")
)

// Store provides database operations for family units and memberships.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new family store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const memberColumns = `id, user_id, family_id, role, created_at`

func scanMember(row pgx.Row) (*Member, error) {
	m := &Member{}
	err := row.Scan(&m.ID, &m.UserID, &m.FamilyID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create makes a new family unit with the caller as its first member, as one
// transaction. It returns the resolved scope for the new family.
func (s *Store) Create(ctx context.Context, userID, role string) (*Data, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	unit := Unit{}
	err = tx.QueryRow(ctx,
		`INSERT INTO family_units DEFAULT VALUES RETURNING id, created_at`,
	).Scan(&unit.ID, &unit.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating family unit: %w", err)
	}

	member, err := scanMember(tx.QueryRow(ctx,
		`INSERT INTO family_members (user_id, family_id, role)
		 VALUES ($1, $2, $3)
		 RETURNING `+memberColumns,
		userID, unit.ID, role,
	))
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("creating first family member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing family creation: %w", err)
	}

	return &Data{
		FamilyID: unit.ID,
		Unit:     unit,
		Members:  []Member{*member},
	}, nil
}

// Resolve determines the single family the user belongs to. It returns
// (nil, nil) when the user has no membership row; that is an answer, not an
// error. More than one membership row returns ErrMultipleFamilies.
func (s *Store) Resolve(ctx context.Context, userID string) (*Data, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT family_id FROM family_members WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving family for user: %w", err)
	}
	defer rows.Close()

	var familyIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning family id: %w", err)
		}
		familyIDs = append(familyIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating memberships: %w", err)
	}

	switch len(familyIDs) {
	case 0:
		return nil, nil
	case 1:
		return s.Get(ctx, familyIDs[0])
	default:
		return nil, fmt.Errorf("user %s: %w", userID, ErrMultipleFamilies)
	}
}

// Get loads a family unit and its full member list.
func (s *Store) Get(ctx context.Context, familyID string) (*Data, error) {
	unit := Unit{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, created_at FROM family_units WHERE id = $1`, familyID,
	).Scan(&unit.ID, &unit.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting family unit: %w", err)
	}

	members, err := s.ListMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}

	return &Data{
		FamilyID: unit.ID,
		Unit:     unit,
		Members:  members,
	}, nil
}

// ListMembers returns all members of the family ordered by join time.
func (s *Store) ListMembers(ctx context.Context, familyID string) ([]Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM family_members
		 WHERE family_id = $1 ORDER BY created_at`, familyID)
	if err != nil {
		return nil, fmt.Errorf("listing family members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning family member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating family members: %w", err)
	}
	if members == nil {
		members = []Member{}
	}
	return members, nil
}

// IsUniqueViolation reports whether the error is a Postgres unique-constraint
// violation, used to translate duplicate memberships into ErrAlreadyMember.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
