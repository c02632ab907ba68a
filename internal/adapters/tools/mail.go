package tools

import (
	"context"
	"fmt"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
)

// KindMail sends test emails.
const KindMail = "mail"

// Mail implements the mail task kind. Without sources one message is built
// from the message option; otherwise every source file is sent as the HTML
// body of its own message.
//
// Options:
//
//	transport   {type: postmark|sendmail|dir, ...transport options}
//	message     {from, subject, text, html, tag}
//	recipients  list of {email, name} mappings or plain addresses
type Mail struct {
	files   fileSet
	mailers ports.MailerFactory
}

// Kind implements ports.Tool.
func (m *Mail) Kind() string { return KindMail }

// Run implements ports.Tool.
func (m *Mail) Run(ctx context.Context, inv domain.Invocation) error {
	opts := inv.Task.Options
	transport, err := opts.Map("transport")
	if err != nil {
		return err
	}
	transportType, err := transport.String("type", "")
	if err != nil {
		return err
	}
	message, err := parseMessage(opts)
	if err != nil {
		return err
	}
	if len(message.To) == 0 {
		return zerr.With(domain.ErrNoRecipients, "task", inv.Task.Name)
	}
	if message.Tag == "" {
		message.Tag = inv.Task.Target
	}

	files, err := m.files.sources(inv)
	if err != nil {
		return err
	}
	messages := []domain.Message{message}
	if len(files) > 0 {
		messages = messages[:0]
		for _, f := range files {
			data, err := readFile(inv.Env, f)
			if err != nil {
				return err
			}
			msg := message
			msg.HTML = string(data)
			messages = append(messages, msg)
		}
	}

	mailer, err := m.mailers.New(inv.Env, transportType, transport)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		if err := mailer.Send(ctx, msg); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(inv.Stdout, "%s sent to %s.\n", pluralize(len(messages), "message"), pluralize(len(message.To), "recipient"))
	return nil
}

func parseMessage(opts domain.Options) (domain.Message, error) {
	raw, err := opts.Map("message")
	if err != nil {
		return domain.Message{}, err
	}
	var msg domain.Message
	fields := []struct {
		key string
		dst *string
	}{
		{"from", &msg.From},
		{"subject", &msg.Subject},
		{"text", &msg.Text},
		{"html", &msg.HTML},
		{"tag", &msg.Tag},
	}
	for _, f := range fields {
		if *f.dst, err = raw.String(f.key, ""); err != nil {
			return domain.Message{}, err
		}
	}

	recipients, ok := opts["recipients"].([]any)
	if !ok && opts.Has("recipients") {
		return domain.Message{}, zerr.With(domain.ErrInvalidOption, "option", "recipients")
	}
	for _, r := range recipients {
		switch v := r.(type) {
		case string:
			msg.To = append(msg.To, domain.Recipient{Email: v})
		case map[string]any:
			entry := domain.Options(v)
			email, err := entry.String("email", "")
			if err != nil {
				return domain.Message{}, err
			}
			name, err := entry.String("name", "")
			if err != nil {
				return domain.Message{}, err
			}
			if email == "" {
				return domain.Message{}, zerr.With(zerr.With(domain.ErrInvalidOption, "option", "recipients"), "missing", "email")
			}
			msg.To = append(msg.To, domain.Recipient{Email: email, Name: name})
		default:
			return domain.Message{}, zerr.With(domain.ErrInvalidOption, "option", "recipients")
		}
	}
	return msg, nil
}
