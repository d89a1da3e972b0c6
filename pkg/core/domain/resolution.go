package domain

// ResolutionState is a step of the resolver state machine
type ResolutionState int

const (
	StateLookingUp ResolutionState = iota
	StateFoundActive
	StateFoundExpired
	StateNotFound
	StateRecording
	StateRedirecting
)

var stateNames = map[ResolutionState]string{
	StateLookingUp:    "looking_up",
	StateFoundActive:  "found_active",
	StateFoundExpired: "found_expired",
	StateNotFound:     "not_found",
	StateRecording:    "recording",
	StateRedirecting:  "redirecting",
}

func (s ResolutionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition follows s
func (s ResolutionState) Terminal() bool {
	return s == StateFoundExpired || s == StateNotFound || s == StateRedirecting
}

// Resolution is the outcome of resolving a short code.
// Target and Click are only set when State is StateRedirecting.
type Resolution struct {
	ShortCode string
	State     ResolutionState
	Target    string
	Link      *ShortenedLink
	Click     *ClickRecord
}

// Redirect reports whether the caller should navigate to Target
func (r Resolution) Redirect() bool {
	return r.State == StateRedirecting
}
