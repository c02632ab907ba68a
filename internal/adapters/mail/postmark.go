package mail

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// Postmark sends messages through the Postmark transactional API.
type Postmark struct {
	client *postmark.Client
}

// NewPostmark creates a Postmark transport. Both tokens are required.
func NewPostmark(serverToken, accountToken string) (*Postmark, error) {
	if serverToken == "" {
		return nil, zerr.With(domain.ErrInvalidMailConfig, "missing", "POSTMARK_SERVER_TOKEN")
	}
	if accountToken == "" {
		return nil, zerr.With(domain.ErrInvalidMailConfig, "missing", "POSTMARK_ACCOUNT_TOKEN")
	}
	return &Postmark{client: postmark.NewClient(serverToken, accountToken)}, nil
}

// WithBaseURL points the client at another API endpoint.
func (p *Postmark) WithBaseURL(url string) *Postmark {
	p.client.BaseURL = url
	return p
}

// Send delivers msg, one API call per message with all recipients.
func (p *Postmark) Send(ctx context.Context, msg domain.Message) error {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     msg.From,
		To:       msg.ToHeader(),
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		HTMLBody: msg.HTML,
		TextBody: msg.Text,
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMailSendFailed.Error()), "transport", TransportPostmark)
	}
	if resp.ErrorCode > 0 {
		err := zerr.Wrap(fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message), domain.ErrMailSendFailed.Error())
		return zerr.With(err, "transport", TransportPostmark)
	}
	return nil
}
