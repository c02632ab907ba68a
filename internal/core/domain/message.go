package domain

import (
	"fmt"
	"strings"
)

// Recipient is a mail recipient.
type Recipient struct {
	Email string
	Name  string
}

// String formats the recipient as an RFC 5322 address.
func (r Recipient) String() string {
	if r.Name == "" {
		return r.Email
	}
	return fmt.Sprintf("%q <%s>", r.Name, r.Email)
}

// Message is a test email produced by a mail task.
type Message struct {
	From    string
	To      []Recipient
	Subject string
	Text    string
	HTML    string
	Tag     string
}

// ToHeader joins the recipients for a To header.
func (m Message) ToHeader() string {
	parts := make([]string, len(m.To))
	for i, r := range m.To {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
