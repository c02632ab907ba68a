// Package mail provides the transports used by the mail task: Postmark,
// a local sendmail binary, and an outbox directory for offline previews.
package mail

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// Settings holds the transport secrets and defaults. Values come from the
// process environment, falling back to the project's .env file.
type Settings struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	From                 string `env:"MAIL_FROM"`
	SendmailPath         string `env:"SENDMAIL_PATH" envDefault:"/usr/sbin/sendmail"`
	OutboxDir            string `env:"MAIL_OUTBOX_DIR" envDefault:"outbox"`
}

// LoadSettings reads Settings for the project rooted at root.
// Non-empty variables in the process environment win over the .env file.
func LoadSettings(root string) (Settings, error) {
	vars, err := godotenv.Read(filepath.Join(root, domain.DotEnvFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, zerr.With(zerr.Wrap(err, domain.ErrInvalidMailConfig.Error()), "path", domain.DotEnvFile)
	}
	if vars == nil {
		vars = map[string]string{}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && v != "" {
			vars[k] = v
		}
	}

	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: vars}); err != nil {
		return Settings{}, zerr.Wrap(err, domain.ErrInvalidMailConfig.Error())
	}
	return s, nil
}
