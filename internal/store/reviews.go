package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Review is a rating one platform user leaves for another after a tenancy
// or service engagement.
type Review struct {
	ID         int64     `json:"id"`
	ReviewerID int64     `json:"reviewer_id"`
	RevieweeID int64     `json:"reviewee_id"`
	Rating     int       `json:"rating"` // 1..5
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewsStore struct {
	db *pgxpool.Pool
}

func (s *ReviewsStore) Create(ctx context.Context, r *Review) error {
	query := `
		INSERT INTO reviews (reviewer_id, reviewee_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query, r.ReviewerID, r.RevieweeID, r.Rating, r.Comment).Scan(&r.ID, &r.CreatedAt)
}

func (s *ReviewsStore) GetByID(ctx context.Context, id int64) (*Review, error) {
	query := `SELECT id, reviewer_id, reviewee_id, rating, comment, created_at FROM reviews WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	r := &Review{}
	err := s.db.QueryRow(ctx, query, id).Scan(&r.ID, &r.ReviewerID, &r.RevieweeID, &r.Rating, &r.Comment, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *ReviewsStore) ListByReviewee(ctx context.Context, revieweeID int64) ([]Review, error) {
	query := `
		SELECT id, reviewer_id, reviewee_id, rating, comment, created_at
		FROM reviews WHERE reviewee_id = $1 ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, revieweeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.ReviewerID, &r.RevieweeID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *ReviewsStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsParticipant: both sides of the review are stakeholders.
func (s *ReviewsStore) IsParticipant(ctx context.Context, userID, reviewID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE id = $1 AND (reviewer_id = $2 OR reviewee_id = $2))`,
		reviewID, userID,
	).Scan(&exists)
	return exists, err
}
