package holiday

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an arrangement id matches no row.
var ErrNotFound = errors.New("holiday arrangement not found")

// Store provides database operations for holiday arrangements.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new holiday store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const arrangementColumns = `id, family_id, created_by, name, start_date, end_date,
	with_parent, location, pickup_time, pickup_location, dropoff_time,
	dropoff_location, created_at`

func scanArrangement(row pgx.Row) (*Arrangement, error) {
	a := &Arrangement{}
	err := row.Scan(&a.ID, &a.FamilyID, &a.CreatedBy, &a.Name, &a.StartDate,
		&a.EndDate, &a.WithParent, &a.Location, &a.PickupTime,
		&a.PickupLocation, &a.DropoffTime, &a.DropoffLocation, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByFamily returns the family's holiday entries in chronological order.
func (s *Store) ListByFamily(ctx context.Context, familyID string) ([]*Arrangement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+arrangementColumns+` FROM holiday_arrangements
		 WHERE family_id = $1 ORDER BY start_date ASC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("listing holiday arrangements: %w", err)
	}
	defer rows.Close()

	var arrangements []*Arrangement
	for rows.Next() {
		a, err := scanArrangement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning holiday arrangement: %w", err)
		}
		arrangements = append(arrangements, a)
	}
	return arrangements, rows.Err()
}

// Create inserts a new holiday entry and returns the full row.
func (s *Store) Create(ctx context.Context, in CreateArrangementInput) (*Arrangement, error) {
	a, err := scanArrangement(s.pool.QueryRow(ctx,
		`INSERT INTO holiday_arrangements
		 (family_id, created_by, name, start_date, end_date, with_parent,
		  location, pickup_time, pickup_location, dropoff_time, dropoff_location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+arrangementColumns,
		in.FamilyID, in.CreatedBy, in.Name, in.StartDate, in.EndDate,
		in.WithParent, in.Location, in.PickupTime, in.PickupLocation,
		in.DropoffTime, in.DropoffLocation,
	))
	if err != nil {
		return nil, fmt.Errorf("creating holiday arrangement: %w", err)
	}
	return a, nil
}

// GetByID retrieves a holiday entry by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*Arrangement, error) {
	a, err := scanArrangement(s.pool.QueryRow(ctx,
		`SELECT `+arrangementColumns+` FROM holiday_arrangements WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting holiday arrangement: %w", err)
	}
	return a, nil
}

// Update applies a partial update and returns the updated row.
func (s *Store) Update(ctx context.Context, id string, in UpdateArrangementInput) (*Arrangement, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	addClause := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if in.Name != nil {
		addClause("name", *in.Name)
	}
	if in.StartDate != nil {
		addClause("start_date", *in.StartDate)
	}
	if in.EndDate != nil {
		addClause("end_date", *in.EndDate)
	}
	if in.WithParent != nil {
		addClause("with_parent", *in.WithParent)
	}
	if in.Location != nil {
		addClause("location", *in.Location)
	}
	if in.PickupTime != nil {
		addClause("pickup_time", *in.PickupTime)
	}
	if in.PickupLocation != nil {
		addClause("pickup_location", *in.PickupLocation)
	}
	if in.DropoffTime != nil {
		addClause("dropoff_time", *in.DropoffTime)
	}
	if in.DropoffLocation != nil {
		addClause("dropoff_location", *in.DropoffLocation)
	}

	if len(setClauses) == 0 {
		return s.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE holiday_arrangements SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, arrangementColumns,
	)

	a, err := scanArrangement(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating holiday arrangement: %w", err)
	}
	return a, nil
}

// Delete removes a holiday entry. Deleting an id that no longer exists is
// not an error; the end state is the same either way.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM holiday_arrangements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting holiday arrangement: %w", err)
	}
	return nil
}
