package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/Unblonde/gentle-separation-guide/internal/auth"
)

const sessionDuration = 7 * 24 * time.Hour

// ErrNotFound is returned when a user or profile lookup matches no row.
var ErrNotFound = errors.New("user not found")

// IsDuplicateEmail reports whether the error is the unique violation raised
// when signing up with an email that already has an account.
func IsDuplicateEmail(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Store provides database operations for users, profiles, and sessions.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new user store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create inserts a new user with a bcrypt-hashed password and an initial
// profile row, as one transaction.
func (s *Store) Create(ctx context.Context, in CreateUserInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	u := &User{}
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, email, password_hash, created_at`,
		in.Email, string(hash),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, full_name, updated_at) VALUES ($1, $2, now())`,
		u.ID, in.FullName,
	)
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing user creation: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email address.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// FindOrCreateByEmail returns the user with the given email, creating one
// (with an unusable empty password hash and the given display name) if absent.
// Used by the OAuth callback, where no password is ever set.
func (s *Store) FindOrCreateByEmail(ctx context.Context, email, fullName string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	u = &User{}
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email) VALUES ($1)
		 RETURNING id, email, password_hash, created_at`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating oauth user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, full_name, updated_at) VALUES ($1, $2, now())`,
		u.ID, fullName,
	)
	if err != nil {
		return nil, fmt.Errorf("creating oauth profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing oauth user creation: %w", err)
	}
	return u, nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
// Accounts created via OAuth have no hash and never match.
func CheckPassword(u *User, password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// GetProfile retrieves the profile for the given user id. Unlike the
// family-scoped reads, a missing profile is an explicit not-found.
func (s *Store) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	p := &Profile{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, full_name, updated_at FROM profiles WHERE id = $1`, userID,
	).Scan(&p.ID, &p.FullName, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return p, nil
}

// UpdateProfile performs a partial update on the user's profile.
func (s *Store) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*Profile, error) {
	if in.FullName == nil {
		return s.GetProfile(ctx, userID)
	}

	p := &Profile{}
	err := s.pool.QueryRow(ctx,
		`UPDATE profiles SET full_name = $1, updated_at = now()
		 WHERE id = $2
		 RETURNING id, full_name, updated_at`,
		*in.FullName, userID,
	).Scan(&p.ID, &p.FullName, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return p, nil
}

// CreateSession creates a new session for the given user. It returns the
// opaque plaintext token (to be sent to the client) and the stored session.
func (s *Store) CreateSession(ctx context.Context, userID string) (string, *Session, error) {
	plaintext, tokenHash, err := auth.GenerateSessionToken()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	expiresAt := now.Add(sessionDuration)

	sess := &Session{}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO sessions (token_hash, user_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING token_hash, user_id, created_at, expires_at`,
		tokenHash, userID, now, expiresAt,
	).Scan(&sess.TokenHash, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		return "", nil, fmt.Errorf("creating session: %w", err)
	}

	return plaintext, sess, nil
}

// GetSessionUser looks up a session by its plaintext token and returns the
// associated user with profile name attached.
func (s *Store) GetSessionUser(ctx context.Context, plaintext string) (*User, string, error) {
	tokenHash := auth.HashToken(plaintext)

	u := &User{}
	var fullName *string
	err := s.pool.QueryRow(ctx,
		`SELECT u.id, u.email, u.password_hash, u.created_at, p.full_name
		 FROM sessions s
		 JOIN users u ON s.user_id = u.id
		 LEFT JOIN profiles p ON p.id = u.id
		 WHERE s.token_hash = $1 AND s.expires_at > now()`,
		tokenHash,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &fullName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting session user: %w", err)
	}

	name := ""
	if fullName != nil {
		name = *fullName
	}
	return u, name, nil
}

// DeleteSession removes a session by its plaintext token.
func (s *Store) DeleteSession(ctx context.Context, plaintext string) error {
	tokenHash := auth.HashToken(plaintext)
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// CleanExpiredSessions deletes all sessions that have expired.
func (s *Store) CleanExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("cleaning expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
