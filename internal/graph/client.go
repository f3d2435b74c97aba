// Package graph implements a mailbox client for the Microsoft Graph mail API
// using OAuth2 client-credentials authentication.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/shineum/graphmail-lite/internal/email"
)

// DefaultBaseURL is the Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Config holds the settings of a Client. It is copied on construction and
// never changed afterwards.
type Config struct {
	// TokenURL overrides the token endpoint derived from TenantID.
	TokenURL     string
	ClientID     string
	ClientSecret string
	TenantID     string
	// ProxyURL is used for every HTTPS request, token requests included.
	ProxyURL string
	// Mailbox is the user id or address all mailbox operations act on.
	Mailbox string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the proxied HTTP client. The proxy setting in
// Config is ignored when this option is used.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at a different Graph root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit paces mailbox requests to rps requests per second with the
// given burst. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Client performs mailbox operations against the Graph API. Each operation
// fetches a new access token; nothing is cached and nothing is retried.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
	tokens     *tokenFetcher
}

// New creates a Client. It fails only when cfg.ProxyURL cannot be parsed.
func New(cfg Config, opts ...Option) (*Client, error) {
	c := &Client{
		cfg:     cfg,
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		hc, err := newHTTPClient(cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = tokenURLForTenant(cfg.TenantID)
	}
	c.tokens = newTokenFetcher(tokenURL, cfg.ClientID, cfg.ClientSecret, c.httpClient)

	return c, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "msgraph"
}

// FetchToken acquires a new access token with the client-credentials grant.
// Errors match ErrAuth.
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	return c.tokens.fetch(ctx)
}

// MarkRead sets isRead on the message with the given id.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	u := c.userURL(c.cfg.Mailbox) + "/messages/" + messageID
	_, err := c.do(ctx, "mark_read", http.MethodPatch, u, []byte(markReadBody))
	return err
}

// SearchUnread lists unread inbox messages whose subject contains every word
// of subject. A non-empty sender further restricts the sender address.
func (c *Client) SearchUnread(ctx context.Context, subject, sender string) ([]email.Message, error) {
	return c.listInbox(ctx, "search_unread", unreadFilter(subject, sender))
}

// Receive lists inbox messages whose subject contains subject and whose read
// flag equals isRead.
func (c *Client) Receive(ctx context.Context, isRead bool, subject string) ([]email.Message, error) {
	return c.listInbox(ctx, "receive", receiveFilter(isRead, subject))
}

// Send posts an HTML message from sender's mailbox. The message is not saved
// to Sent Items.
func (c *Client) Send(ctx context.Context, sender, body, subject string, to, cc []string) error {
	payload, err := json.Marshal(buildSendMailRequest(body, subject, to, cc))
	if err != nil {
		return fmt.Errorf("failed to marshal sendMail request: %w", err)
	}

	_, err = c.do(ctx, "send", http.MethodPost, c.userURL(sender)+"/sendMail", payload)
	return err
}

// Deliver sends msg through Send so the client can serve as a provider.
// The configured mailbox is used when msg has no sender.
func (c *Client) Deliver(ctx context.Context, msg *email.Email) error {
	sender := msg.From
	if sender == "" {
		sender = c.cfg.Mailbox
	}
	return c.Send(ctx, sender, msg.Body(), msg.Subject, msg.To, msg.Cc)
}

// ClearBox marks every unread inbox message as read, one request per message.
// Individual failures are logged and skipped; only a failed listing is
// returned.
func (c *Client) ClearBox(ctx context.Context) error {
	msgs, err := c.listInbox(ctx, "clear_box", unreadClause)
	if err != nil {
		return err
	}

	marked := 0
	for _, msg := range msgs {
		if err := c.MarkRead(ctx, msg.ID); err != nil {
			c.logger.Warn("failed to mark message as read",
				"message_id", msg.ID,
				"error", err,
			)
			continue
		}
		marked++
	}

	c.logger.Info("cleared inbox",
		"listed", len(msgs),
		"marked", marked,
	)
	return nil
}

// listInbox runs a filtered inbox listing and decodes the value array.
func (c *Client) listInbox(ctx context.Context, op, filter string) ([]email.Message, error) {
	u := c.userURL(c.cfg.Mailbox) + "/mailFolders('inbox')/messages?$filter=" + requote(filter)

	body, err := c.do(ctx, op, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var list messageList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &RequestError{
			Op:         op,
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("failed to decode message list: %w", err),
		}
	}
	if list.Value == nil {
		list.Value = []email.Message{}
	}
	return list.Value, nil
}

func (c *Client) userURL(user string) string {
	return c.baseURL + "/users/" + user
}

// do issues one authenticated mailbox request and returns the response body
// of a 2xx answer. A token failure is logged and the request still goes out
// without credentials; the token error is then joined to any request error.
func (c *Client) do(ctx context.Context, op, method, rawURL string, payload []byte) ([]byte, error) {
	token, tokenErr := c.FetchToken(ctx)
	if tokenErr != nil {
		c.logger.Warn("issuing request without access token",
			"op", op,
			"error", tokenErr,
		)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, withAuthFailure(tokenErr, &RequestError{Op: op, Err: err})
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, withAuthFailure(tokenErr, &RequestError{Op: op, Err: err})
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("client-request-id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, withAuthFailure(tokenErr, &RequestError{Op: op, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, withAuthFailure(tokenErr, &RequestError{Op: op, StatusCode: resp.StatusCode, Err: err})
	}

	c.logger.Debug("graph response",
		"op", op,
		"status", resp.StatusCode,
		"client_request_id", requestID,
	)

	if resp.StatusCode >= 300 {
		reqErr := newRequestError(op, resp.StatusCode, body)
		c.logger.Warn("graph request failed",
			"op", op,
			"status", resp.StatusCode,
			"code", reqErr.Code,
			"client_request_id", requestID,
		)
		return nil, withAuthFailure(tokenErr, reqErr)
	}

	return body, nil
}

// newRequestError builds a RequestError from a non-2xx response, preferring
// the Graph error envelope over the raw body.
func newRequestError(op string, status int, body []byte) *RequestError {
	reqErr := &RequestError{Op: op, StatusCode: status}

	var envelope graphErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		reqErr.Code = envelope.Error.Code
		reqErr.Message = envelope.Error.Message
		return reqErr
	}

	reqErr.Message = strings.TrimSpace(string(body))
	return reqErr
}
