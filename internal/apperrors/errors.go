package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Sentinel errors for the core taxonomy. Handlers and services return these
// (optionally wrapped with %w) and the fiber error handler maps them to HTTP
// statuses. Credential and code failures carry deliberately generic messages
// so responses never reveal whether an identifier exists.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrOTPInvalidOrExpired = errors.New("invalid or expired verification code")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrRateLimited         = errors.New("too many requests, try again later")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Machine-readable error codes included in JSON error bodies.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeOTPInvalid         = "OTP_INVALID_OR_EXPIRED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeInvalidState       = "INVALID_STATE"
	CodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	CodeInternalError      = "INTERNAL_ERROR"
)

func classify(err error) (int, string) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, ErrConflict):
		return fiber.StatusBadRequest, CodeConflict
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.StatusUnauthorized, CodeInvalidCredentials
	case errors.Is(err, ErrOTPInvalidOrExpired):
		return fiber.StatusUnauthorized, CodeOTPInvalid
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden, CodeForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, CodeNotFound
	case errors.Is(err, ErrInvalidState):
		return fiber.StatusConflict, CodeInvalidState
	case errors.Is(err, ErrRateLimited):
		return fiber.StatusTooManyRequests, CodeRateLimit
	}
	return fiber.StatusInternalServerError, CodeInternalError
}

// ErrorHandler returns the fiber error handler for the application. Taxonomy
// errors surface with their own message; anything unexpected is logged with
// full context and answered with a generic 500.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"error":   fe.Message,
			})
		}

		status, code := classify(err)
		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("unhandled error")
			return c.Status(status).JSON(fiber.Map{
				"success": false,
				"error":   "internal server error",
				"code":    code,
			})
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    code,
		})
	}
}
