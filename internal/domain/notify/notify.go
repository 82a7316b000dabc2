package notify

import "context"

// Sink delivers a human-readable message. Callers never let a Sink error
// undo a committed mutation.
type Sink interface {
	Notify(ctx context.Context, email, subject, body string) error
}
