package notifications

import (
	"context"
	"testing"

	"github.com/9ssi7/exponent"

	"rentora/internal/store"
)

// The adapter must wrap the client the exponent package actually exports.
var _ PushSender = NewExpoAdapter(exponent.NewClient())

type fakePush struct {
	msgs []*exponent.Message
}

func (f *fakePush) Publish(_ context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	f.msgs = append(f.msgs, msgs...)
	return nil, nil
}

func (f *fakePush) PublishSingle(_ context.Context, msg *exponent.Message) ([]*exponent.MessageResponse, error) {
	f.msgs = append(f.msgs, msg)
	return nil, nil
}

type fakePushTokens struct {
	tokens map[int64][]string
}

func (f *fakePushTokens) Save(_ context.Context, userID int64, token string) error {
	if f.tokens == nil {
		f.tokens = map[int64][]string{}
	}
	f.tokens[userID] = append(f.tokens[userID], token)
	return nil
}

func (f *fakePushTokens) GetByUser(_ context.Context, userID int64) ([]string, error) {
	return f.tokens[userID], nil
}

func (f *fakePushTokens) Delete(_ context.Context, userID int64, token string) error {
	return nil
}

func TestSendTicketNotification(t *testing.T) {
	push := &fakePush{}
	storage := store.Storage{PushTokens: &fakePushTokens{
		tokens: map[int64][]string{9: {"ExponentPushToken[aaa]", "ExponentPushToken[bbb]"}},
	}}

	err := SendTicketNotification(context.Background(), push, storage, 9, TicketAssigned, 41)
	if err != nil {
		t.Fatalf("SendTicketNotification: %v", err)
	}

	if len(push.msgs) != 2 {
		t.Fatalf("expected one message per device, got %d", len(push.msgs))
	}
	msg := push.msgs[0]
	if msg.Title != "Ticket Assigned" {
		t.Errorf("unexpected title %q", msg.Title)
	}
	if msg.Data["ticketId"] != "41" {
		t.Errorf("expected deep-link ticketId 41, got %q", msg.Data["ticketId"])
	}
	if msg.Data["event"] != string(TicketAssigned) {
		t.Errorf("expected event %s, got %q", TicketAssigned, msg.Data["event"])
	}
}

func TestSendTicketNotificationNoTokens(t *testing.T) {
	push := &fakePush{}
	storage := store.Storage{PushTokens: &fakePushTokens{}}

	if err := SendTicketNotification(context.Background(), push, storage, 3, TicketResolved, 7); err == nil {
		t.Fatal("expected error for a user with no registered devices")
	}
	if len(push.msgs) != 0 {
		t.Fatalf("nothing should be published, got %d messages", len(push.msgs))
	}
}
