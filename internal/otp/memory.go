package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/example/campusmart/internal/apperrors"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
	consumed  bool
}

// MemoryStore is an in-process Store for single-instance deployments.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]*memoryEntry
}

// NewMemoryStore constructs an empty in-memory code store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]*memoryEntry)}
}

// Put replaces any existing code for the (identifier, channel) pair.
func (s *MemoryStore) Put(ctx context.Context, code Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[storeKey(code.Identifier, code.Channel)] = &memoryEntry{
		value:     code.Value,
		expiresAt: code.ExpiresAt,
	}
	return nil
}

// Consume validates and marks the pair's live code consumed under one lock.
// The value comparison is constant-time so mismatches leak nothing about
// partial matches.
func (s *MemoryStore) Consume(ctx context.Context, identifier string, channel Channel, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[storeKey(identifier, channel)]
	if !ok || entry.consumed || time.Now().After(entry.expiresAt) {
		return apperrors.ErrOTPInvalidOrExpired
	}

	if subtle.ConstantTimeCompare([]byte(entry.value), []byte(value)) != 1 {
		return apperrors.ErrOTPInvalidOrExpired
	}

	entry.consumed = true
	return nil
}
