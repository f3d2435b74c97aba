package graph

import "github.com/shineum/graphmail-lite/internal/email"

// markReadBody is sent verbatim by MarkRead. Graph accepts the quoted "true".
const markReadBody = `{
    "isRead": "true"
}`

// sendMailRequest is the request body of the sendMail endpoint.
type sendMailRequest struct {
	Message         sendMailMessage `json:"Message"`
	SaveToSentItems bool            `json:"saveToSentItems"`
}

// sendMailMessage is the message portion of a sendMail request.
type sendMailMessage struct {
	Subject      string            `json:"subject"`
	Body         email.ItemBody    `json:"body"`
	ToRecipients []email.Recipient `json:"toRecipients"`
	CcRecipients []email.Recipient `json:"ccRecipients"`
}

// messageList is the envelope of a messages listing.
type messageList struct {
	Value []email.Message `json:"value"`
}

// graphErrorResponse is the error envelope of a failed Graph call.
type graphErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// recipients maps plain addresses to Graph recipient objects, keeping order.
// The result is never nil so it encodes as [] rather than null.
func recipients(addresses []string) []email.Recipient {
	out := make([]email.Recipient, 0, len(addresses))
	for _, addr := range addresses {
		out = append(out, email.Recipient{EmailAddress: email.Address{Address: addr}})
	}
	return out
}

// buildSendMailRequest assembles the sendMail body. The body is always sent
// as HTML and never saved to Sent Items.
func buildSendMailRequest(body, subject string, to, cc []string) *sendMailRequest {
	return &sendMailRequest{
		Message: sendMailMessage{
			Subject: subject,
			Body: email.ItemBody{
				ContentType: "HTML",
				Content:     body,
			},
			ToRecipients: recipients(to),
			CcRecipients: recipients(cc),
		},
		SaveToSentItems: false,
	}
}
