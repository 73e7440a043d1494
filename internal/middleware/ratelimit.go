package middleware

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/ratelimit"
)

// RateLimitConfig defines the shared window parameters for auth endpoints.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type identifierFields struct {
	Email          string `json:"email"`
	WhatsAppNumber string `json:"whatsappNumber"`
	PhoneNumber    string `json:"phoneNumber"`
}

// RateLimit guards a route group with the sliding-window counter. Requests
// are counted per client IP and, when the body carries one, per identifier,
// so an attacker cannot farm codes for a single address from many IPs. Keys
// are hashed before they reach the counter store. Counter errors fail open.
func RateLimit(counter ratelimit.Counter, cfg RateLimitConfig, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		keys := []string{"ip:" + c.IP()}

		var ids identifierFields
		if err := json.Unmarshal(c.Body(), &ids); err == nil {
			switch {
			case ids.Email != "":
				keys = append(keys, "id:"+ids.Email)
			case ids.WhatsAppNumber != "":
				keys = append(keys, "id:"+ids.WhatsAppNumber)
			case ids.PhoneNumber != "":
				keys = append(keys, "id:"+ids.PhoneNumber)
			}
		}

		for _, key := range keys {
			count, err := counter.Incr(c.Context(), hashKey(key), cfg.Window)
			if err != nil {
				log.Error().Err(err).Msg("rate limit counter unavailable, allowing request")
				continue
			}
			if count > int64(cfg.Max) {
				return apperrors.ErrRateLimited
			}
		}

		return c.Next()
	}
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", sum)
}
