package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Property is a rental unit listed by an owner, optionally managed by a
// broker.
type Property struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	BrokerID    *int64    `json:"broker_id,omitempty"`
	Title       string    `json:"title"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	MonthlyRent float64   `json:"monthly_rent"`
	Bedrooms    int       `json:"bedrooms"`
	Description *string   `json:"description,omitempty"`
	Amenities   []string  `json:"amenities,omitempty"`
	ImageURLs   []string  `json:"image_urls,omitempty"`
	Status      string    `json:"status"` // available | rented | maintenance
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PropertiesStore struct {
	db *pgxpool.Pool
}

func (s *PropertiesStore) Create(ctx context.Context, p *Property) error {
	query := `
		INSERT INTO properties (owner_id, broker_id, title, address, city, monthly_rent, bedrooms, description, amenities, image_urls, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE(NULLIF($11, ''), 'available'))
		RETURNING id, status, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		p.OwnerID, p.BrokerID, p.Title, p.Address, p.City, p.MonthlyRent,
		p.Bedrooms, p.Description, p.Amenities, p.ImageURLs, p.Status,
	).Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
}

func (s *PropertiesStore) GetByID(ctx context.Context, id int64) (*Property, error) {
	query := `
		SELECT id, owner_id, broker_id, title, address, city, monthly_rent, bedrooms, description, amenities, image_urls, status, created_at, updated_at
		FROM properties WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	p := &Property{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.BrokerID, &p.Title, &p.Address, &p.City,
		&p.MonthlyRent, &p.Bedrooms, &p.Description, &p.Amenities, &p.ImageURLs,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PropertiesStore) ListByOwner(ctx context.Context, ownerID int64) ([]Property, error) {
	query := `
		SELECT id, owner_id, broker_id, title, address, city, monthly_rent, bedrooms, description, amenities, image_urls, status, created_at, updated_at
		FROM properties WHERE owner_id = $1 ORDER BY id
	`
	return s.list(ctx, query, ownerID)
}

func (s *PropertiesStore) List(ctx context.Context) ([]Property, error) {
	query := `
		SELECT id, owner_id, broker_id, title, address, city, monthly_rent, bedrooms, description, amenities, image_urls, status, created_at, updated_at
		FROM properties ORDER BY id
	`
	return s.list(ctx, query)
}

func (s *PropertiesStore) list(ctx context.Context, query string, args ...any) ([]Property, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.BrokerID, &p.Title, &p.Address, &p.City,
			&p.MonthlyRent, &p.Bedrooms, &p.Description, &p.Amenities, &p.ImageURLs,
			&p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

func (s *PropertiesStore) Update(ctx context.Context, p *Property) error {
	query := `
		UPDATE properties
		SET title = $1, address = $2, city = $3, monthly_rent = $4, bedrooms = $5,
		    description = $6, amenities = $7, status = $8, broker_id = $9, updated_at = NOW()
		WHERE id = $10
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query,
		p.Title, p.Address, p.City, p.MonthlyRent, p.Bedrooms,
		p.Description, p.Amenities, p.Status, p.BrokerID, p.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PropertiesStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PropertiesStore) AddPhotoURL(ctx context.Context, propertyID int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx,
		`UPDATE properties SET image_urls = array_append(image_urls, $1), updated_at = NOW() WHERE id = $2`,
		url, propertyID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PropertiesStore) RemovePhotoURL(ctx context.Context, propertyID int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx,
		`UPDATE properties SET image_urls = array_remove(image_urls, $1), updated_at = NOW() WHERE id = $2`,
		url, propertyID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsOwner is the ownership predicate for the properties resource.
func (s *PropertiesStore) IsOwner(ctx context.Context, userID, propertyID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1 AND owner_id = $2)`,
		propertyID, userID,
	).Scan(&exists)
	return exists, err
}
