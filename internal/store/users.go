package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentora/internal/auth"
)

var (
	ErrDuplicateEmail       = errors.New("a user with that email already exists")
	ErrDuplicatePhoneNumber = errors.New("a user with that phone number already exists")
)

type User struct {
	ID                   int64     `json:"id"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone"`
	Role                 auth.Role `json:"role"`
	Password             Password  `json:"-"`
	RefreshToken         string    `json:"-"`
	IsActive             bool      `json:"is_active"`
	ResetPasswordToken   string    `json:"-"`
	ResetPasswordExpires time.Time `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Record flattens the user for API responses. The password hash and tokens
// are included so the redaction boundary can strip them for non-admins.
func (u *User) Record() map[string]any {
	return map[string]any{
		"id":            u.ID,
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"email":         u.Email,
		"phone":         u.Phone,
		"role":          u.Role,
		"is_active":     u.IsActive,
		"password":      u.Password.Hash(),
		"refresh_token": u.RefreshToken,
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}
}

// Password wraps the stored bcrypt hash; hashing and comparison go through
// the auth package so there is exactly one bcrypt policy.
type Password struct {
	hash string
}

func (p *Password) Set(text string) error {
	hash, err := auth.HashPassword(text)
	if err != nil {
		return err
	}
	p.hash = hash
	return nil
}

func (p *Password) Compare(text string) bool {
	return auth.VerifyPassword(text, p.hash)
}

func (p *Password) Hash() string { return p.hash }

type UsersStore struct {
	db *pgxpool.Pool
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

func (s *UsersStore) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, phone, role, password, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(
		ctx, query,
		user.FirstName, user.LastName, user.Email, user.Phone, user.Role, user.Password.hash, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		case isUniqueViolation(err, "users_phone_key"):
			return ErrDuplicatePhoneNumber
		default:
			return err
		}
	}
	return nil
}

// CreateAndInvite stores the user inactive together with a hashed
// activation token, in one transaction.
func (s *UsersStore) CreateAndInvite(ctx context.Context, user *User, invitationToken string, exp time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	user.IsActive = false
	insert := `
		INSERT INTO users (first_name, last_name, email, phone, role, password, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(
		ctx, insert,
		user.FirstName, user.LastName, user.Email, user.Phone, user.Role, user.Password.hash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		case isUniqueViolation(err, "users_phone_key"):
			return ErrDuplicatePhoneNumber
		default:
			return err
		}
	}

	invite := `INSERT INTO user_invitations (token, user_id, expiry) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, invite, invitationToken, user.ID, time.Now().Add(exp)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Activate flips the user active and burns the invitation token.
func (s *UsersStore) Activate(ctx context.Context, invitationToken string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID int64
	find := `SELECT user_id FROM user_invitations WHERE token = $1 AND expiry > NOW()`
	if err := tx.QueryRow(ctx, find, invitationToken).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET is_active = true, updated_at = NOW() WHERE id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_invitations WHERE user_id = $1`, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *UsersStore) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, role, password, is_active, created_at, updated_at
		FROM users WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	user := &User{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Phone,
		&user.Role, &user.Password.hash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UsersStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, role, password, is_active, created_at, updated_at
		FROM users WHERE email = $1 AND is_active = true
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	user := &User{}
	err := s.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Phone,
		&user.Role, &user.Password.hash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UsersStore) List(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, role, is_active, created_at, updated_at
		FROM users ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UsersStore) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, phone = $4, role = $5,
		    password = $6, is_active = $7,
		    reset_password_token = NULLIF($8, ''), reset_password_expires = $9,
		    updated_at = NOW()
		WHERE id = $10
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query,
		user.FirstName, user.LastName, user.Email, user.Phone, user.Role,
		user.Password.hash, user.IsActive,
		user.ResetPasswordToken, nullableTime(user.ResetPasswordExpires), user.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UsersStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UsersStore) SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `UPDATE users SET refresh_token = $1, updated_at = NOW() WHERE id = $2`, refreshToken, userID)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (s *UsersStore) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var token *string
	err := s.db.QueryRow(ctx, `SELECT refresh_token FROM users WHERE id = $1`, userID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if token == nil {
		return "", nil
	}
	return *token, nil
}

func (s *UsersStore) DeleteRefreshToken(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `UPDATE users SET refresh_token = NULL, updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (s *UsersStore) UpdateResetToken(ctx context.Context, email, hashToken string, expires time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx,
		`UPDATE users SET reset_password_token = $1, reset_password_expires = $2, updated_at = NOW() WHERE email = $3`,
		hashToken, expires, email,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UsersStore) GetByResetToken(ctx context.Context, hashToken string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, role, password, is_active,
		       reset_password_token, reset_password_expires, created_at, updated_at
		FROM users WHERE reset_password_token = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	user := &User{}
	var expires *time.Time
	err := s.db.QueryRow(ctx, query, hashToken).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Phone,
		&user.Role, &user.Password.hash, &user.IsActive,
		&user.ResetPasswordToken, &expires, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if expires != nil {
		user.ResetPasswordExpires = *expires
	}
	return user, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
