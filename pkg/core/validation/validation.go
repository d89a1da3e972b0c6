// Package validation holds the pure input predicates applied before a link is created.
package validation

import (
	"net/url"
	"regexp"
)

var shortCodeRe = regexp.MustCompile(`^[A-Za-z0-9]{3,20}$`)

// IsValidURL reports whether candidate parses as an absolute URL with a scheme
// and an authority. No reachability check is made.
func IsValidURL(candidate string) bool {
	if candidate == "" {
		return false
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

// IsValidShortCode reports whether candidate is an acceptable custom alias.
// The field is optional, so the empty string is valid.
func IsValidShortCode(candidate string) bool {
	if candidate == "" {
		return true
	}
	return shortCodeRe.MatchString(candidate)
}
