package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PushTokensStore keeps Expo push tokens per user so ticket events can be
// delivered to mobile devices.
type PushTokensStore struct {
	db *pgxpool.Pool
}

func (s *PushTokensStore) Save(ctx context.Context, userID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		INSERT INTO push_tokens (user_id, token) VALUES ($1, $2)
		ON CONFLICT (user_id, token) DO NOTHING
	`, userID, token)
	return err
}

func (s *PushTokensStore) GetByUser(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT token FROM push_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *PushTokensStore) Delete(ctx context.Context, userID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `DELETE FROM push_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	return err
}
