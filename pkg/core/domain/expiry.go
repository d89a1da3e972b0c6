package domain

import (
	"math"
	"time"
)

// maxValidityMinutes is the largest validity a time.Duration can hold
const maxValidityMinutes = math.MaxInt64 / int64(time.Minute)

// Clock returns the current time. Components take one instead of calling time.Now.
type Clock func() time.Time

// ExpiryOf returns createdAt + validityMinutes minutes. Validities too large for
// a time.Duration are clamped to the largest one.
func ExpiryOf(createdAt time.Time, validityMinutes int) time.Time {
	minutes := int64(validityMinutes)
	if minutes > maxValidityMinutes {
		minutes = maxValidityMinutes
	}
	return createdAt.Add(time.Duration(minutes) * time.Minute)
}

// IsExpired is the one expiry rule shared by the registry, the resolver and any
// presentation layer. A link is still active at the exact expiry instant.
func IsExpired(createdAt time.Time, validityMinutes int, now time.Time) bool {
	return now.After(ExpiryOf(createdAt, validityMinutes))
}
