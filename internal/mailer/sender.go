package mailer

import (
	"context"
)

// Email is one outbound message. All addresses in To receive the same message.
type Email struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html"`
}

// Sender delivers emails. Implementations report failure through the returned error.
type Sender interface {
	SendEmail(ctx context.Context, email Email) error
}
