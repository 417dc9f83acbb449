package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Payment is a rent or deposit payment against a contract. Reference is a
// short human-readable code generated after insert.
type Payment struct {
	ID         int64      `json:"id"`
	ContractID int64      `json:"contract_id"`
	PayerID    int64      `json:"payer_id"`
	Amount     float64    `json:"amount"`
	Kind       string     `json:"kind"` // rent | deposit | fee
	Reference  string     `json:"reference,omitempty"`
	Status     string     `json:"status"` // pending | paid | failed | refunded
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type PaymentsStore struct {
	db *pgxpool.Pool
}

func (s *PaymentsStore) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (contract_id, payer_id, amount, kind, status)
		VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, ''), 'pending'))
		RETURNING id, status, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query, p.ContractID, p.PayerID, p.Amount, p.Kind, p.Status).
		Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
}

func (s *PaymentsStore) GetByID(ctx context.Context, id int64) (*Payment, error) {
	query := `
		SELECT id, contract_id, payer_id, amount, kind, COALESCE(reference, ''), status, paid_at, created_at, updated_at
		FROM payments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	p := &Payment{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ContractID, &p.PayerID, &p.Amount, &p.Kind, &p.Reference,
		&p.Status, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PaymentsStore) ListByContract(ctx context.Context, contractID int64) ([]Payment, error) {
	query := `
		SELECT id, contract_id, payer_id, amount, kind, COALESCE(reference, ''), status, paid_at, created_at, updated_at
		FROM payments WHERE contract_id = $1 ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID, &p.ContractID, &p.PayerID, &p.Amount, &p.Kind, &p.Reference,
			&p.Status, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *PaymentsStore) Update(ctx context.Context, p *Payment) error {
	query := `
		UPDATE payments SET amount = $1, kind = $2, status = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $5
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, p.Amount, p.Kind, p.Status, p.PaidAt, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PaymentsStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PaymentsStore) SetReference(ctx context.Context, paymentID int64, reference string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `UPDATE payments SET reference = $1, updated_at = NOW() WHERE id = $2`, reference, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsParticipant resolves payment ownership through the contract: the
// contract's owner, tenant and broker are all stakeholders in its payments.
func (s *PaymentsStore) IsParticipant(ctx context.Context, userID, paymentID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payments p
			JOIN contracts c ON c.id = p.contract_id
			WHERE p.id = $1 AND (c.owner_id = $2 OR c.tenant_id = $2 OR c.broker_id = $2)
		)
	`, paymentID, userID).Scan(&exists)
	return exists, err
}
