package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an arrangement id matches no row.
var ErrNotFound = errors.New("financial arrangement not found")

// Store provides database operations for financial arrangements.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new finance store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const arrangementColumns = `id, family_id, created_by, category, description,
	parent_a, parent_b, status, created_at`

func scanArrangement(row pgx.Row) (*Arrangement, error) {
	a := &Arrangement{}
	err := row.Scan(&a.ID, &a.FamilyID, &a.CreatedBy, &a.Category,
		&a.Description, &a.ParentA, &a.ParentB, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByFamily returns the family's arrangements, newest first.
func (s *Store) ListByFamily(ctx context.Context, familyID string) ([]*Arrangement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+arrangementColumns+` FROM financial_arrangements
		 WHERE family_id = $1 ORDER BY created_at DESC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("listing financial arrangements: %w", err)
	}
	defer rows.Close()

	var arrangements []*Arrangement
	for rows.Next() {
		a, err := scanArrangement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning financial arrangement: %w", err)
		}
		arrangements = append(arrangements, a)
	}
	return arrangements, rows.Err()
}

// Create inserts a new arrangement and returns the full row.
func (s *Store) Create(ctx context.Context, in CreateArrangementInput) (*Arrangement, error) {
	status := in.Status
	if status == "" {
		status = StatusUnreviewed
	}

	a, err := scanArrangement(s.pool.QueryRow(ctx,
		`INSERT INTO financial_arrangements
		 (family_id, created_by, category, description, parent_a, parent_b, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+arrangementColumns,
		in.FamilyID, in.CreatedBy, in.Category, in.Description,
		in.ParentA, in.ParentB, status,
	))
	if err != nil {
		return nil, fmt.Errorf("creating financial arrangement: %w", err)
	}
	return a, nil
}

// GetByID retrieves an arrangement by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*Arrangement, error) {
	a, err := scanArrangement(s.pool.QueryRow(ctx,
		`SELECT `+arrangementColumns+` FROM financial_arrangements WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting financial arrangement: %w", err)
	}
	return a, nil
}

// Update applies a partial update and returns the updated row. Last write
// wins: there is no version check, so two parents editing concurrently can
// overwrite each other.
func (s *Store) Update(ctx context.Context, id string, in UpdateArrangementInput) (*Arrangement, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if in.Category != nil {
		setClauses = append(setClauses, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *in.Category)
		argIdx++
	}
	if in.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *in.Description)
		argIdx++
	}
	if in.ParentA != nil {
		setClauses = append(setClauses, fmt.Sprintf("parent_a = $%d", argIdx))
		args = append(args, *in.ParentA)
		argIdx++
	}
	if in.ParentB != nil {
		setClauses = append(setClauses, fmt.Sprintf("parent_b = $%d", argIdx))
		args = append(args, *in.ParentB)
		argIdx++
	}
	if in.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *in.Status)
		argIdx++
	}

	if len(setClauses) == 0 {
		return s.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE financial_arrangements SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, arrangementColumns,
	)

	a, err := scanArrangement(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating financial arrangement: %w", err)
	}
	return a, nil
}
