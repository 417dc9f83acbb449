package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ticket is a maintenance or support request raised against a property.
type Ticket struct {
	ID         int64     `json:"id"`
	PropertyID *int64    `json:"property_id,omitempty"`
	CreatorID  int64     `json:"creator_id"`
	AssignedTo *int64    `json:"assigned_to,omitempty"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Priority   string    `json:"priority"` // low | medium | high | urgent
	Status     string    `json:"status"`   // open | in_progress | resolved | closed
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type TicketsStore struct {
	db *pgxpool.Pool
}

func (s *TicketsStore) Create(ctx context.Context, t *Ticket) error {
	query := `
		INSERT INTO tickets (property_id, creator_id, assigned_to, subject, body, priority, status)
		VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6, ''), 'medium'), 'open')
		RETURNING id, priority, status, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query, t.PropertyID, t.CreatorID, t.AssignedTo, t.Subject, t.Body, t.Priority).
		Scan(&t.ID, &t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt)
}

func (s *TicketsStore) GetByID(ctx context.Context, id int64) (*Ticket, error) {
	query := `
		SELECT id, property_id, creator_id, assigned_to, subject, body, priority, status, created_at, updated_at
		FROM tickets WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	t := &Ticket{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.PropertyID, &t.CreatorID, &t.AssignedTo, &t.Subject, &t.Body,
		&t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TicketsStore) ListByParticipant(ctx context.Context, userID int64) ([]Ticket, error) {
	query := `
		SELECT id, property_id, creator_id, assigned_to, subject, body, priority, status, created_at, updated_at
		FROM tickets WHERE creator_id = $1 OR assigned_to = $1 ORDER BY id DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(
			&t.ID, &t.PropertyID, &t.CreatorID, &t.AssignedTo, &t.Subject, &t.Body,
			&t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *TicketsStore) ListAll(ctx context.Context) ([]Ticket, error) {
	query := `
		SELECT id, property_id, creator_id, assigned_to, subject, body, priority, status, created_at, updated_at
		FROM tickets ORDER BY id DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(
			&t.ID, &t.PropertyID, &t.CreatorID, &t.AssignedTo, &t.Subject, &t.Body,
			&t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *TicketsStore) Update(ctx context.Context, t *Ticket) error {
	query := `
		UPDATE tickets SET assigned_to = $1, subject = $2, body = $3, priority = $4, status = $5, updated_at = NOW()
		WHERE id = $6
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, t.AssignedTo, t.Subject, t.Body, t.Priority, t.Status, t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TicketsStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsParticipant: ticket creator and current assignee are stakeholders.
func (s *TicketsStore) IsParticipant(ctx context.Context, userID, ticketID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1 AND (creator_id = $2 OR assigned_to = $2))`,
		ticketID, userID,
	).Scan(&exists)
	return exists, err
}
