package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/9ssi7/exponent"

	"rentora/internal/store"
)

type TicketEvent string

const (
	TicketAssigned TicketEvent = "ASSIGNED"
	TicketUpdated  TicketEvent = "UPDATED"
	TicketResolved TicketEvent = "RESOLVED"
	TicketClosed   TicketEvent = "CLOSED"
)

// SendTicketNotification pushes a ticket event to all of the user's
// registered devices. A user without push tokens is not an error worth
// failing the request over; callers log and move on.
func SendTicketNotification(ctx context.Context, push PushSender, storage store.Storage, userID int64, event TicketEvent, ticketID int64) error {
	tokens, err := storage.PushTokens.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	id := strconv.FormatInt(ticketID, 10)

	var title, body string
	switch event {
	case TicketAssigned:
		title = "Ticket Assigned"
		body = fmt.Sprintf("Ticket #%s has been assigned to you", id)
	case TicketResolved:
		title = "Ticket Resolved"
		body = fmt.Sprintf("Your ticket #%s has been resolved", id)
	case TicketClosed:
		title = "Ticket Closed"
		body = fmt.Sprintf("Your ticket #%s has been closed", id)
	default:
		title = "Ticket Update"
		body = fmt.Sprintf("Ticket #%s has an update", id)
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			// Drives deep linking when the notification is tapped.
			Data: map[string]string{
				"type":     "ticket",
				"event":    string(event),
				"ticketId": id,
				"screen":   "tickets",
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}
