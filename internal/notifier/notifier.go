package notifier

import (
	"context"
)

// Notifier delivers a verification code to a contact identity out-of-band.
// Delivery is best-effort: callers log failures and move on, a lost message
// never rolls back the issued code.
type Notifier interface {
	Send(ctx context.Context, destination string, code string) error
}

// NoOp notifier for tests and local runs without SMTP/SMS credentials
type NoOp struct{}

func (NoOp) Send(ctx context.Context, destination string, code string) error {
	return nil
}
