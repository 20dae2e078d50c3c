package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/katatrina/complaint-BE/internal/util"
	"github.com/wneessen/go-mail"
)

type SMTPSender struct {
	client      *mail.Client
	fromName    string
	fromAddress string
}

func NewSMTPSender(config util.Config) (*SMTPSender, error) {
	client, err := mail.NewClient(config.SMTPHost, mail.WithPort(config.SMTPPort), mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(config.SMTPUsername), mail.WithPassword(config.SMTPPassword))
	if err != nil {
		return nil, err
	}

	fromAddress := config.EmailSenderAddress
	if fromAddress == "" {
		fromAddress = config.SMTPUsername
	}

	return &SMTPSender{
		client:      client,
		fromName:    config.EmailSenderName,
		fromAddress: fromAddress,
	}, nil
}

func (sender *SMTPSender) SendEmail(ctx context.Context, email Email) error {
	msg, err := newMessage(sender.fromName, sender.fromAddress, email)
	if err != nil {
		return err
	}

	if err = sender.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func newMessage(fromName, fromAddress string, email Email) (*mail.Msg, error) {
	if len(email.To) == 0 {
		return nil, errors.New("email has no recipients")
	}

	msg := mail.NewMsg()

	if err := msg.FromFormat(fromName, fromAddress); err != nil {
		return nil, fmt.Errorf("failed to set From address: %w", err)
	}

	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("failed to set To address: %w", err)
	}

	msg.Subject(email.Subject)

	switch {
	case email.Text != "" && email.HTML != "":
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	case email.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
	}

	return msg, nil
}
