package otp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/campusmart/internal/apperrors"
)

type captureSender struct {
	mu    sync.Mutex
	sent  []string
	codes []string
}

func (s *captureSender) SendCode(ctx context.Context, recipient, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, recipient)
	s.codes = append(s.codes, code)
	return nil
}

func newTestService() *Service {
	return NewService(NewMemoryStore(), 15*time.Minute, zerolog.Nop())
}

func TestIssueAndValidateOnce(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	code, err := svc.Issue(ctx, "a@u.edu", ChannelEmail)
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, svc.Validate(ctx, "a@u.edu", ChannelEmail, code))

	err = svc.Validate(ctx, "a@u.edu", ChannelEmail, code)
	assert.ErrorIs(t, err, apperrors.ErrOTPInvalidOrExpired)
}

func TestValidateWrongValue(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	code, err := svc.Issue(ctx, "a@u.edu", ChannelEmail)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err = svc.Validate(ctx, "a@u.edu", ChannelEmail, wrong)
	assert.ErrorIs(t, err, apperrors.ErrOTPInvalidOrExpired)

	// The live code is untouched by a failed attempt.
	require.NoError(t, svc.Validate(ctx, "a@u.edu", ChannelEmail, code))
}

func TestValidateExpiredCode(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, 15*time.Minute, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Code{
		Identifier: "a@u.edu",
		Channel:    ChannelEmail,
		Value:      "483920",
		CreatedAt:  time.Now().Add(-20 * time.Minute),
		ExpiresAt:  time.Now().Add(-5 * time.Minute),
	}))

	err := svc.Validate(ctx, "a@u.edu", ChannelEmail, "483920")
	assert.ErrorIs(t, err, apperrors.ErrOTPInvalidOrExpired)
}

func TestReissueSupersedesPriorCode(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Issue(ctx, "+15550001", ChannelWhatsApp)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, "+15550001", ChannelWhatsApp)
	require.NoError(t, err)

	if first != second {
		err = svc.Validate(ctx, "+15550001", ChannelWhatsApp, first)
		assert.ErrorIs(t, err, apperrors.ErrOTPInvalidOrExpired)
	}
	require.NoError(t, svc.Validate(ctx, "+15550001", ChannelWhatsApp, second))
}

func TestChannelsAreIndependent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	emailCode, err := svc.Issue(ctx, "a@u.edu", ChannelEmail)
	require.NoError(t, err)

	err = svc.Validate(ctx, "a@u.edu", ChannelWhatsApp, emailCode)
	assert.ErrorIs(t, err, apperrors.ErrOTPInvalidOrExpired)

	require.NoError(t, svc.Validate(ctx, "a@u.edu", ChannelEmail, emailCode))
}

func TestConcurrentValidateSingleWinner(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	code, err := svc.Issue(ctx, "a@u.edu", ChannelEmail)
	require.NoError(t, err)

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Validate(ctx, "a@u.edu", ChannelEmail, code)
		}()
	}
	wg.Wait()
	close(results)

	successes, failures := 0, 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		require.True(t, errors.Is(err, apperrors.ErrOTPInvalidOrExpired), "unexpected error: %v", err)
		failures++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, failures)
}

func TestIssueDispatchesToSender(t *testing.T) {
	svc := newTestService()
	sender := &captureSender{}
	svc.RegisterSender(ChannelEmail, sender)

	code, err := svc.Issue(context.Background(), "a@u.edu", ChannelEmail)
	require.NoError(t, err)

	// Dispatch is fire-and-forget; give the goroutine a moment.
	require.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.sent) == 1
	}, time.Second, 10*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, "a@u.edu", sender.sent[0])
	assert.Equal(t, code, sender.codes[0])
}
