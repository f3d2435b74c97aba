package graph

import (
	"strconv"
	"strings"
)

// orSeparator is dropped from subject searches rather than turned into an
// OData "or". Callers relying on OR semantics get AND instead.
const orSeparator = "||"

// unreadClause closes every unread filter. It is written with literal '+'
// separators, which Graph decodes as spaces.
const unreadClause = "isRead+eq+false"

// subjectQuery turns each space-separated word of subject into a
// "contains(subject,'word') and " clause. The trailing "and " is left for the
// caller to complete.
func subjectQuery(subject string) string {
	var b strings.Builder
	for _, word := range strings.Split(subject, " ") {
		if word == orSeparator {
			continue
		}
		b.WriteString("contains(subject,'")
		b.WriteString(word)
		b.WriteString("') and ")
	}
	return b.String()
}

// unreadFilter builds the $filter used by SearchUnread. An empty sender omits
// the sender clause.
func unreadFilter(subject, sender string) string {
	query := subjectQuery(subject)
	if sender != "" {
		return "(sender/emailAddress/address) eq '" + sender + "' and " + query + " " + unreadClause
	}
	return query + " " + unreadClause
}

// receiveFilter builds the $filter used by Receive.
func receiveFilter(isRead bool, subject string) string {
	return "contains(subject,'" + subject + "') and isRead+eq+" + strconv.FormatBool(isRead)
}

// requote percent-encodes the bytes of a raw query that may not appear in a
// request line, leaving reserved characters and existing escapes alone. The
// filter therefore reaches Graph exactly as it was built.
func requote(raw string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]):
			b.WriteByte(c)
		case isQuerySafe(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

func isQuerySafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!$&'()*+,/:;=?@[]", c) >= 0
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
