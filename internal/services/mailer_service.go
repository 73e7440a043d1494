package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mailersend/mailersend-go"
	"github.com/rs/zerolog"
)

// MailerService delivers one-time codes over the email channel via
// MailerSend. When no API key is configured the service degrades to logging
// the attempt, which keeps local development working without credentials.
type MailerService struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
	log     zerolog.Logger
}

// NewMailerService constructs the email sender.
func NewMailerService(apiKey, fromName, fromEmail string, log zerolog.Logger) *MailerService {
	s := &MailerService{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
		log: log,
	}
	if s.enabled {
		s.client = mailersend.NewMailersend(apiKey)
	}
	return s
}

// SendCode emails a verification code to the recipient.
func (s *MailerService) SendCode(ctx context.Context, recipient, code string) error {
	if !s.enabled {
		s.log.Warn().Str("recipient", recipient).Msg("mailer not configured, skipping email dispatch")
		return nil
	}

	msg := s.client.Email.NewMessage()
	msg.SetFrom(s.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: recipient}})
	msg.SetSubject("Your CampusMart verification code")
	msg.SetText(fmt.Sprintf("Your verification code is %s. It expires in 15 minutes.", code))
	msg.SetHTML(fmt.Sprintf("<p>Your verification code is <b>%s</b>.</p><p>It expires in 15 minutes.</p>", code))

	res, err := s.client.Email.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("mailersend send: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
