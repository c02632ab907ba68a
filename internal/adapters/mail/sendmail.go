package mail

import (
	"bytes"
	"context"
	"io"
	"slices"
	"time"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
)

// Sendmail pipes composed messages into a sendmail-compatible binary.
type Sendmail struct {
	executor ports.Executor
	path     string
	args     []string
	output   io.Writer
}

// NewSendmail creates a Sendmail transport. Recipients are read from the
// message headers (-t) and a lone dot does not end the input (-i).
func NewSendmail(executor ports.Executor, path string, args []string, output io.Writer) *Sendmail {
	if len(args) == 0 {
		args = []string{"-t", "-i"}
	}
	if output == nil {
		output = io.Discard
	}
	return &Sendmail{executor: executor, path: path, args: args, output: output}
}

// Send delivers msg.
func (s *Sendmail) Send(ctx context.Context, msg domain.Message) error {
	raw, err := Compose(msg, time.Now())
	if err != nil {
		return zerr.Wrap(err, domain.ErrMailSendFailed.Error())
	}

	cmd := domain.Command{
		Args:  append([]string{s.path}, slices.Clone(s.args)...),
		Stdin: bytes.NewReader(raw),
	}
	if err := s.executor.Execute(ctx, cmd, s.output, s.output); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMailSendFailed.Error()), "transport", TransportSendmail)
	}
	return nil
}
