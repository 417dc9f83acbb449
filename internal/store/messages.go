package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Message is a direct message between two platform users.
type Message struct {
	ID         int64      `json:"id"`
	SenderID   int64      `json:"sender_id"`
	ReceiverID int64      `json:"receiver_id"`
	Body       string     `json:"body"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type MessagesStore struct {
	db *pgxpool.Pool
}

func (s *MessagesStore) Create(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query, m.SenderID, m.ReceiverID, m.Body).Scan(&m.ID, &m.CreatedAt)
}

func (s *MessagesStore) GetByID(ctx context.Context, id int64) (*Message, error) {
	query := `SELECT id, sender_id, receiver_id, body, read_at, created_at FROM messages WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	m := &Message{}
	err := s.db.QueryRow(ctx, query, id).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.ReadAt, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *MessagesStore) ListConversation(ctx context.Context, userID, otherID int64) ([]Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, body, read_at, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID, otherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *MessagesStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsParticipant: sender and receiver are stakeholders in a message.
func (s *MessagesStore) IsParticipant(ctx context.Context, userID, messageID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM messages WHERE id = $1 AND (sender_id = $2 OR receiver_id = $2))`,
		messageID, userID,
	).Scan(&exists)
	return exists, err
}
