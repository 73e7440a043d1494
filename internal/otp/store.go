package otp

import (
	"context"
	"time"
)

// Channel is the delivery medium for a one-time code.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// Code is an ephemeral single-use credential bound to an
// (identifier, channel) pair.
type Code struct {
	Identifier string
	Channel    Channel
	Value      string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Store keeps at most one live code per (identifier, channel) pair.
//
// Put is an authoritative replacement: any previously stored code for the
// pair stops validating the moment Put returns. Consume is the linearization
// point for validation: the not-consumed check and the consumed mark happen
// as one atomic step, so two racing Consume calls with the same correct value
// yield exactly one success.
type Store interface {
	Put(ctx context.Context, code Code) error
	Consume(ctx context.Context, identifier string, channel Channel, value string) error
}

func storeKey(identifier string, channel Channel) string {
	return string(channel) + ":" + identifier
}
