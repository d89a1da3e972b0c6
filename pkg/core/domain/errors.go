package domain

import "errors"

// Creation failures. Resolution misses are not errors, see ResolutionState.
var (
	ErrInvalidURL              = errors.New("invalid URL format")
	ErrInvalidShortCode        = errors.New("invalid short code format, use 3-20 alphanumeric characters")
	ErrDuplicateShortCode      = errors.New("short code already exists")
	ErrActiveLinkLimitExceeded = errors.New("maximum number of active links reached")
	ErrGenerationExhausted     = errors.New("unable to generate unique short code")
)

// ErrorKind returns a stable tag for a creation error, used in logs and metrics
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, ErrInvalidShortCode):
		return "invalid_short_code"
	case errors.Is(err, ErrDuplicateShortCode):
		return "duplicate_short_code"
	case errors.Is(err, ErrActiveLinkLimitExceeded):
		return "active_link_limit_exceeded"
	case errors.Is(err, ErrGenerationExhausted):
		return "generation_exhausted"
	default:
		return "internal"
	}
}
