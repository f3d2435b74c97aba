// Package stdout implements a dry-run Provider that prints outbound messages
// instead of delivering them.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shineum/graphmail-lite/internal/email"
)

const rule = "----------------------------------------\n"

// Provider writes each message to an io.Writer in a human-readable form.
type Provider struct {
	writer io.Writer
}

// New creates a Provider that writes to os.Stdout.
func New() *Provider {
	return &Provider{writer: os.Stdout}
}

// NewWithWriter creates a Provider that writes to w.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Deliver prints msg. The HTML body is preferred, matching what the Graph
// client would submit.
func (p *Provider) Deliver(_ context.Context, msg *email.Email) error {
	var b strings.Builder

	b.WriteString(rule)
	fmt.Fprintf(&b, "From: %s\n", orNone(msg.From))
	fmt.Fprintf(&b, "To: %s\n", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\n", strings.Join(msg.Cc, ", "))
	}
	if len(msg.Bcc) > 0 {
		fmt.Fprintf(&b, "Bcc: %s\n", strings.Join(msg.Bcc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString("\n")
	b.WriteString(msg.Body())
	b.WriteString("\n")
	b.WriteString(rule)

	if _, err := io.WriteString(p.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stdout"
}

func orNone(s string) string {
	if s == "" {
		return "(default sender)"
	}
	return s
}
