package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shineum/graphmail-lite/internal/email"
)

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Acquire an access token and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newGraphClient(a.cfg, a.logger, false)
			if err != nil {
				return err
			}

			token, err := client.FetchToken(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, token)
			return err
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var subject, sender string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List unread inbox messages matching every word of a subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newGraphClient(a.cfg, a.logger, true)
			if err != nil {
				return err
			}

			msgs, err := client.SearchUnread(cmd.Context(), subject, sender)
			if err != nil {
				return err
			}
			return printMessages(a.stdout, msgs)
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "words that must all appear in the subject")
	cmd.Flags().StringVar(&sender, "sender", "", "restrict to this sender address")
	return cmd
}

func newReceiveCmd(a *app) *cobra.Command {
	var (
		subject string
		isRead  bool
	)

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "List inbox messages by subject and read flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newGraphClient(a.cfg, a.logger, true)
			if err != nil {
				return err
			}

			msgs, err := client.Receive(cmd.Context(), isRead, subject)
			if err != nil {
				return err
			}
			return printMessages(a.stdout, msgs)
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "text the subject must contain")
	cmd.Flags().BoolVar(&isRead, "read", false, "list read messages instead of unread ones")
	return cmd
}

func newMarkReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-read ID",
		Short: "Mark one message as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newGraphClient(a.cfg, a.logger, true)
			if err != nil {
				return err
			}

			if err := client.MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.logger.Info("message marked as read", "message_id", args[0])
			return nil
		},
	}
}

func newSendCmd(a *app) *cobra.Command {
	var (
		msg          email.Email
		providerName string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an HTML message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := selectProvider(cmd.Context(), a.cfg, providerName, a.logger, a.stdout)
			if err != nil {
				return err
			}

			if err := p.Deliver(cmd.Context(), &msg); err != nil {
				return fmt.Errorf("%s delivery failed: %w", p.Name(), err)
			}
			a.logger.Info("message sent",
				"provider", p.Name(),
				"recipients", len(msg.To)+len(msg.Cc),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&msg.Subject, "subject", "", "message subject")
	cmd.Flags().StringVar(&msg.HTMLBody, "body", "", "HTML body")
	cmd.Flags().StringSliceVar(&msg.To, "to", nil, "recipient address (repeatable)")
	cmd.Flags().StringSliceVar(&msg.Cc, "cc", nil, "carbon-copy address (repeatable)")
	cmd.Flags().StringVar(&msg.From, "from", "", "sender mailbox (defaults to the configured one)")
	cmd.Flags().StringVar(&providerName, "provider", "", "graph, ses or stdout (defaults to configuration)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newClearBoxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-box",
		Short: "Mark every unread inbox message as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newGraphClient(a.cfg, a.logger, true)
			if err != nil {
				return err
			}
			return client.ClearBox(cmd.Context())
		},
	}
}

// printMessages writes msgs as an indented JSON array. Each element is the
// object exactly as the API returned it.
func printMessages(w io.Writer, msgs []email.Message) error {
	if msgs == nil {
		msgs = []email.Message{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(msgs)
}
