package mailer

import (
	"context"
	"net/mail"
)

// Attachment is an inline file carried by an outbound message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a fully rendered email ready for transport. Template rendering
// happens upstream in the email service; the mailer only delivers.
type Message struct {
	To          []mail.Address
	Cc          []mail.Address
	Subject     string
	TextContent string
	HTMLContent string
	Attachments []Attachment
}

// HasRecipients reports whether the message can be addressed.
func (m *Message) HasRecipients() bool {
	return len(m.To) > 0
}

// HasContent reports whether the message carries a body.
func (m *Message) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}

// Service delivers rendered messages. Implementations return a single
// success/failure per message; partial delivery is never reported.
type Service interface {
	Send(ctx context.Context, msg Message) error
}
