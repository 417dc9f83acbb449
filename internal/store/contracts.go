package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Contract is a lease binding an owner, a tenant and optionally a broker to
// a property.
type Contract struct {
	ID          int64     `json:"id"`
	PropertyID  int64     `json:"property_id"`
	OwnerID     int64     `json:"owner_id"`
	TenantID    int64     `json:"tenant_id"`
	BrokerID    *int64    `json:"broker_id,omitempty"`
	MonthlyRent float64   `json:"monthly_rent"`
	Deposit     float64   `json:"deposit"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"` // draft | active | terminated | expired
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ContractsStore struct {
	db *pgxpool.Pool
}

func (s *ContractsStore) Create(ctx context.Context, c *Contract) error {
	query := `
		INSERT INTO contracts (property_id, owner_id, tenant_id, broker_id, monthly_rent, deposit, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE(NULLIF($9, ''), 'draft'))
		RETURNING id, status, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		c.PropertyID, c.OwnerID, c.TenantID, c.BrokerID,
		c.MonthlyRent, c.Deposit, c.StartDate, c.EndDate, c.Status,
	).Scan(&c.ID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
}

func (s *ContractsStore) GetByID(ctx context.Context, id int64) (*Contract, error) {
	query := `
		SELECT id, property_id, owner_id, tenant_id, broker_id, monthly_rent, deposit, start_date, end_date, status, created_at, updated_at
		FROM contracts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	c := &Contract{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PropertyID, &c.OwnerID, &c.TenantID, &c.BrokerID,
		&c.MonthlyRent, &c.Deposit, &c.StartDate, &c.EndDate, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *ContractsStore) ListByParticipant(ctx context.Context, userID int64) ([]Contract, error) {
	query := `
		SELECT id, property_id, owner_id, tenant_id, broker_id, monthly_rent, deposit, start_date, end_date, status, created_at, updated_at
		FROM contracts
		WHERE owner_id = $1 OR tenant_id = $1 OR broker_id = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		var c Contract
		if err := rows.Scan(
			&c.ID, &c.PropertyID, &c.OwnerID, &c.TenantID, &c.BrokerID,
			&c.MonthlyRent, &c.Deposit, &c.StartDate, &c.EndDate, &c.Status,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (s *ContractsStore) ListAll(ctx context.Context) ([]Contract, error) {
	query := `
		SELECT id, property_id, owner_id, tenant_id, broker_id, monthly_rent, deposit, start_date, end_date, status, created_at, updated_at
		FROM contracts
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		var c Contract
		if err := rows.Scan(
			&c.ID, &c.PropertyID, &c.OwnerID, &c.TenantID, &c.BrokerID,
			&c.MonthlyRent, &c.Deposit, &c.StartDate, &c.EndDate, &c.Status,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (s *ContractsStore) Update(ctx context.Context, c *Contract) error {
	query := `
		UPDATE contracts
		SET monthly_rent = $1, deposit = $2, start_date = $3, end_date = $4, status = $5, broker_id = $6, updated_at = NOW()
		WHERE id = $7
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, c.MonthlyRent, c.Deposit, c.StartDate, c.EndDate, c.Status, c.BrokerID, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ContractsStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsParticipant reports whether the user is the owner, tenant or broker on
// the contract.
func (s *ContractsStore) IsParticipant(ctx context.Context, userID, contractID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM contracts WHERE id = $1 AND (owner_id = $2 OR tenant_id = $2 OR broker_id = $2))`,
		contractID, userID,
	).Scan(&exists)
	return exists, err
}
