package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/campusmart/internal/apperrors"
)

// Sender delivers a one-time code over a single channel.
type Sender interface {
	SendCode(ctx context.Context, recipient, code string) error
}

// Service issues and validates single-use, time-boxed codes.
type Service struct {
	store   Store
	ttl     time.Duration
	senders map[Channel]Sender
	log     zerolog.Logger
}

// NewService constructs the one-time-code service.
func NewService(store Store, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		ttl:     ttl,
		senders: make(map[Channel]Sender),
		log:     log,
	}
}

// RegisterSender attaches the delivery mechanism for a channel.
func (s *Service) RegisterSender(channel Channel, sender Sender) {
	s.senders[channel] = sender
}

// Issue generates a fresh 6-digit code for the pair, superseding any prior
// code, and dispatches it without waiting: the code is valid even if delivery
// later fails. Delivery failures are logged, never rolled back.
func (s *Service) Issue(ctx context.Context, identifier string, channel Channel) (string, error) {
	value, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}

	now := time.Now()
	code := Code{
		Identifier: identifier,
		Channel:    channel,
		Value:      value,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}

	if err := s.store.Put(ctx, code); err != nil {
		return "", err
	}

	if sender, ok := s.senders[channel]; ok {
		go func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sender.SendCode(sendCtx, identifier, value); err != nil {
				s.log.Error().Err(err).
					Str("channel", string(channel)).
					Msg("failed to deliver verification code")
			}
		}()
	}

	return value, nil
}

// Validate consumes the pair's live code. The same generic failure covers a
// missing pair, an expired or already-consumed code, and a wrong value.
func (s *Service) Validate(ctx context.Context, identifier string, channel Channel, candidate string) error {
	if identifier == "" || candidate == "" {
		return apperrors.ErrOTPInvalidOrExpired
	}
	return s.store.Consume(ctx, identifier, channel, candidate)
}

func generateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
