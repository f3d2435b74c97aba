// Package email defines the outbound and inbound message models shared by the
// mailbox client and the delivery providers.
package email

import "encoding/json"

// Email is an outbound message handed to a delivery provider.
type Email struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Body returns the HTML body, or the text body when no HTML is set.
func (e *Email) Body() string {
	if e.HTMLBody != "" {
		return e.HTMLBody
	}
	return e.TextBody
}

// Address is a Graph emailAddress object.
type Address struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// Recipient wraps an Address the way Graph nests it in sender, from and
// recipient lists.
type Recipient struct {
	EmailAddress Address `json:"emailAddress"`
}

// ItemBody is a Graph itemBody object.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Message is a mailbox message as returned by the Graph API. Only the fields
// this module reads are typed; Raw keeps the complete object so callers see
// whatever the API sent.
type Message struct {
	ID               string     `json:"id"`
	Subject          string     `json:"subject"`
	IsRead           bool       `json:"isRead"`
	Sender           *Recipient `json:"sender,omitempty"`
	From             *Recipient `json:"from,omitempty"`
	Body             *ItemBody  `json:"body,omitempty"`
	BodyPreview      string     `json:"bodyPreview,omitempty"`
	ReceivedDateTime string     `json:"receivedDateTime,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and retains the original bytes.
func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Message(p)
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the original object back out unchanged when it is known.
func (m Message) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	type plain Message
	return json.Marshal(plain(m))
}

// SenderAddress returns the sender address, falling back to the from address.
func (m *Message) SenderAddress() string {
	if m.Sender != nil && m.Sender.EmailAddress.Address != "" {
		return m.Sender.EmailAddress.Address
	}
	if m.From != nil {
		return m.From.EmailAddress.Address
	}
	return ""
}
