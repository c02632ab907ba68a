package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// Outbox writes each message as an .eml file into a directory instead of
// sending it, for previewing in a mail client.
type Outbox struct {
	dir string
	now func() time.Time
}

// NewOutbox creates an Outbox writing into dir.
func NewOutbox(dir string) *Outbox {
	return &Outbox{dir: dir, now: time.Now}
}

// Send writes msg to the outbox.
func (o *Outbox) Send(_ context.Context, msg domain.Message) error {
	if err := os.MkdirAll(o.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMailSendFailed.Error()), "path", o.dir)
	}

	now := o.now()
	raw, err := Compose(msg, now)
	if err != nil {
		return zerr.Wrap(err, domain.ErrMailSendFailed.Error())
	}

	identifier := msg.Tag
	if identifier == "" {
		identifier = msg.Subject
	}
	name := fmt.Sprintf("%s_%s.eml", now.Format("2006_01_02_150405.000"), sanitizeFilename(identifier))

	path := filepath.Join(o.dir, name)
	if err := os.WriteFile(path, raw, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMailSendFailed.Error()), "path", path)
	}
	return nil
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilename.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
