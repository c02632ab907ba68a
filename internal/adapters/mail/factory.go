package mail

import (
	"context"
	"io"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
)

// Transport types accepted in a mail task's transport.type option.
const (
	TransportPostmark = "postmark"
	TransportSendmail = "sendmail"
	TransportDir      = "dir"
)

// Factory implements ports.MailerFactory.
type Factory struct {
	executor ports.Executor
	output   io.Writer
}

var _ ports.MailerFactory = (*Factory)(nil)

// NewFactory creates a Factory. Sendmail output goes to output.
func NewFactory(executor ports.Executor, output io.Writer) *Factory {
	return &Factory{executor: executor, output: output}
}

// New builds the transport named by transport. options are the transport's
// own options from the pipeline file:
//
//	postmark: serverToken, accountToken (default to the environment)
//	sendmail: path, args
//	dir:      path
//
// Messages without a sender get MAIL_FROM.
func (f *Factory) New(env domain.Env, transport string, options domain.Options) (ports.Mailer, error) {
	settings, err := LoadSettings(env.Root())
	if err != nil {
		return nil, err
	}

	m, err := f.transport(env, settings, transport, options)
	if err != nil {
		return nil, err
	}
	if settings.From == "" {
		return m, nil
	}
	return &defaultSender{Mailer: m, from: settings.From}, nil
}

func (f *Factory) transport(env domain.Env, settings Settings, transport string, options domain.Options) (ports.Mailer, error) {
	switch transport {
	case TransportPostmark:
		server, err := options.String("serverToken", settings.PostmarkServerToken)
		if err != nil {
			return nil, err
		}
		account, err := options.String("accountToken", settings.PostmarkAccountToken)
		if err != nil {
			return nil, err
		}
		p, err := NewPostmark(server, account)
		if err != nil {
			return nil, err
		}
		if base, _ := options.String("baseURL", ""); base != "" {
			p = p.WithBaseURL(base)
		}
		return p, nil

	case TransportSendmail:
		path, err := options.String("path", settings.SendmailPath)
		if err != nil {
			return nil, err
		}
		args, err := options.Strings("args")
		if err != nil {
			return nil, err
		}
		return NewSendmail(f.executor, path, args, f.output), nil

	case TransportDir:
		dir, err := options.String("path", settings.OutboxDir)
		if err != nil {
			return nil, err
		}
		return NewOutbox(env.Abs(dir)), nil

	default:
		return nil, zerr.With(domain.ErrUnknownTransport, "transport", transport)
	}
}

type defaultSender struct {
	ports.Mailer
	from string
}

func (d *defaultSender) Send(ctx context.Context, msg domain.Message) error {
	if msg.From == "" {
		msg.From = d.from
	}
	return d.Mailer.Send(ctx, msg)
}
