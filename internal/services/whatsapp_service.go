package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// WhatsAppService delivers one-time codes through a WhatsApp business
// gateway. The gateway accepts a JSON payload with the destination number
// and message text.
type WhatsAppService struct {
	apiURL   string
	apiToken string
	client   *http.Client
	log      zerolog.Logger
}

// NewWhatsAppService constructs the messaging-channel sender.
func NewWhatsAppService(apiURL, apiToken string, log zerolog.Logger) *WhatsAppService {
	return &WhatsAppService{
		apiURL:   apiURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

type whatsAppMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// SendCode sends a verification code to the given WhatsApp number.
func (s *WhatsAppService) SendCode(ctx context.Context, recipient, code string) error {
	if s.apiURL == "" {
		s.log.Warn().Str("recipient", recipient).Msg("whatsapp gateway not configured, skipping dispatch")
		return nil
	}

	msg := whatsAppMessage{
		To:   recipient,
		Body: fmt.Sprintf("Your CampusMart verification code is %s. It expires in 15 minutes.", code),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}
	return nil
}
