// Package provider defines the interface for outbound delivery backends.
package provider

import (
	"context"

	"github.com/shineum/graphmail-lite/internal/email"
)

// Provider delivers outbound messages. The Graph mailbox client, AWS SES and
// the stdout dry-run backend implement it.
type Provider interface {
	// Deliver sends msg. It returns an error if the backend rejected it.
	Deliver(ctx context.Context, msg *email.Email) error

	// Name returns the human-readable name of this provider.
	Name() string
}
