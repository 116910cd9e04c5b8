// Package mailer sends transactional email.  Production uses Postmark; when
// no tokens are configured the log sender takes over so development setups
// can complete the signup flow without an outbound mail account.
package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/mrz1836/postmark"

	"github.com/iliyamo/contacts-api/internal/config"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// PostmarkSender sends through Postmark's transactional API.
type PostmarkSender struct {
	client *postmark.Client
	cfg    config.MailConfig
}

// New returns a Postmark-backed sender, or the log sender when the server
// token is missing.
func New(cfg config.MailConfig) Sender {
	if cfg.ServerToken == "" {
		return LogSender{}
	}
	return &PostmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		cfg:    cfg,
	}
}

func (s *PostmarkSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     fmt.Sprintf("%s <%s>", s.cfg.SenderName, s.cfg.SenderEmail),
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
	})
	if err != nil {
		return fmt.Errorf("postmark send: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark send: %d %s", resp.ErrorCode, resp.Message)
	}
	return nil
}

// LogSender writes the message to the process log instead of sending it.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("mailer: would send %q to %s (no postmark token configured)", subject, to)
	return nil
}
