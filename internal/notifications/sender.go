package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender abstracts the push delivery client so ticket notifications can
// be tested without talking to Expo.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
	PublishSingle(ctx context.Context, msg *exponent.Message) ([]*exponent.MessageResponse, error)
}
