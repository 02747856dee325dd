package chat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides database operations for chat messages.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new chat store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ListByFamily returns the family's conversation oldest first, with each
// human message carrying its sender's display name.
func (s *Store) ListByFamily(ctx context.Context, familyID string) ([]*Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.family_id, m.sender_id, COALESCE(p.full_name, ''),
		        m.is_assistant, m.content, m.created_at
		 FROM chat_messages m
		 LEFT JOIN profiles p ON p.id = m.sender_id
		 WHERE m.family_id = $1
		 ORDER BY m.created_at ASC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		err := rows.Scan(&m.ID, &m.FamilyID, &m.SenderID, &m.SenderName,
			&m.IsAssistant, &m.Content, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Create inserts a new chat message and returns the stored row.
func (s *Store) Create(ctx context.Context, in CreateMessageInput) (*Message, error) {
	m := &Message{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (family_id, sender_id, is_assistant, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, family_id, sender_id, is_assistant, content, created_at`,
		in.FamilyID, in.SenderID, in.IsAssistant, in.Content,
	).Scan(&m.ID, &m.FamilyID, &m.SenderID, &m.IsAssistant, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating chat message: %w", err)
	}
	return m, nil
}
