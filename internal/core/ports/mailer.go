package ports

import (
	"context"

	"go.trai.ch/letterpress/internal/core/domain"
)

//go:generate mockgen -source=mailer.go -destination=mocks/mock_mailer.go -package=mocks

// Mailer delivers test messages.
type Mailer interface {
	// Send delivers a single message.
	Send(ctx context.Context, msg domain.Message) error
}

// MailerFactory builds a mailer for a named transport.
type MailerFactory interface {
	// New returns the mailer for transport configured with options.
	// Secrets are read from the environment and the .env file under env's root.
	New(env domain.Env, transport string, options domain.Options) (Mailer, error)
}
