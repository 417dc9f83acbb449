package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		Create(ctx context.Context, user *User) error
		CreateAndInvite(ctx context.Context, user *User, invitationToken string, exp time.Duration) error
		Activate(ctx context.Context, invitationToken string) error
		GetByID(ctx context.Context, id int64) (*User, error)
		GetByEmail(ctx context.Context, email string) (*User, error)
		List(ctx context.Context) ([]User, error)
		Update(ctx context.Context, user *User) error
		Delete(ctx context.Context, id int64) error
		SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error
		GetRefreshToken(ctx context.Context, userID int64) (string, error)
		DeleteRefreshToken(ctx context.Context, userID int64) error
		UpdateResetToken(ctx context.Context, email, hashToken string, expires time.Time) error
		GetByResetToken(ctx context.Context, hashToken string) (*User, error)
	}
	Properties interface {
		Create(ctx context.Context, p *Property) error
		GetByID(ctx context.Context, id int64) (*Property, error)
		ListByOwner(ctx context.Context, ownerID int64) ([]Property, error)
		List(ctx context.Context) ([]Property, error)
		Update(ctx context.Context, p *Property) error
		Delete(ctx context.Context, id int64) error
		AddPhotoURL(ctx context.Context, propertyID int64, url string) error
		RemovePhotoURL(ctx context.Context, propertyID int64, url string) error
		IsOwner(ctx context.Context, userID, propertyID int64) (bool, error)
	}
	Contracts interface {
		Create(ctx context.Context, c *Contract) error
		GetByID(ctx context.Context, id int64) (*Contract, error)
		ListByParticipant(ctx context.Context, userID int64) ([]Contract, error)
		ListAll(ctx context.Context) ([]Contract, error)
		Update(ctx context.Context, c *Contract) error
		Delete(ctx context.Context, id int64) error
		IsParticipant(ctx context.Context, userID, contractID int64) (bool, error)
	}
	Payments interface {
		Create(ctx context.Context, p *Payment) error
		GetByID(ctx context.Context, id int64) (*Payment, error)
		ListByContract(ctx context.Context, contractID int64) ([]Payment, error)
		Update(ctx context.Context, p *Payment) error
		Delete(ctx context.Context, id int64) error
		SetReference(ctx context.Context, paymentID int64, reference string) error
		IsParticipant(ctx context.Context, userID, paymentID int64) (bool, error)
	}
	Tickets interface {
		Create(ctx context.Context, t *Ticket) error
		GetByID(ctx context.Context, id int64) (*Ticket, error)
		ListByParticipant(ctx context.Context, userID int64) ([]Ticket, error)
		ListAll(ctx context.Context) ([]Ticket, error)
		Update(ctx context.Context, t *Ticket) error
		Delete(ctx context.Context, id int64) error
		IsParticipant(ctx context.Context, userID, ticketID int64) (bool, error)
	}
	Messages interface {
		Create(ctx context.Context, m *Message) error
		GetByID(ctx context.Context, id int64) (*Message, error)
		ListConversation(ctx context.Context, userID, otherID int64) ([]Message, error)
		Delete(ctx context.Context, id int64) error
		IsParticipant(ctx context.Context, userID, messageID int64) (bool, error)
	}
	Reviews interface {
		Create(ctx context.Context, r *Review) error
		GetByID(ctx context.Context, id int64) (*Review, error)
		ListByReviewee(ctx context.Context, revieweeID int64) ([]Review, error)
		Delete(ctx context.Context, id int64) error
		IsParticipant(ctx context.Context, userID, reviewID int64) (bool, error)
	}
	Settings interface {
		Get(ctx context.Context, key string) (*Setting, error)
		List(ctx context.Context) ([]Setting, error)
		Set(ctx context.Context, key, value string) error
		Delete(ctx context.Context, key string) error
	}
	AuditLogs interface {
		Append(ctx context.Context, e *AuditEntry) error
		List(ctx context.Context, limit int) ([]AuditEntry, error)
	}
	PushTokens interface {
		Save(ctx context.Context, userID int64, token string) error
		GetByUser(ctx context.Context, userID int64) ([]string, error)
		Delete(ctx context.Context, userID int64, token string) error
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:      &UsersStore{db},
		Properties: &PropertiesStore{db},
		Contracts:  &ContractsStore{db},
		Payments:   &PaymentsStore{db},
		Tickets:    &TicketsStore{db},
		Messages:   &MessagesStore{db},
		Reviews:    &ReviewsStore{db},
		Settings:   &SettingsStore{db},
		AuditLogs:  &AuditLogsStore{db},
		PushTokens: &PushTokensStore{db},
	}
}
