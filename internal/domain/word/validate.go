package word

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default input bounds. Deployments can tighten or relax them via Limits.
const (
	DefaultTermMaxLen = 64
	DefaultNameMaxLen = 48
)

// Limits bounds user-provided text fields.
type Limits struct {
	TermMaxLen int
	NameMaxLen int
}

// DefaultLimits returns the standard input bounds.
func DefaultLimits() Limits {
	return Limits{TermMaxLen: DefaultTermMaxLen, NameMaxLen: DefaultNameMaxLen}
}

// ValidationError describes user-fixable bad input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks a contribution's text fields against the limits. The
// owner token only needs to be present; it is opaque otherwise.
func Validate(limits Limits, term, displayName, ownerToken string) error {
	switch {
	case strings.TrimSpace(term) == "":
		return &ValidationError{Field: "term", Reason: "must not be empty"}
	case utf8.RuneCountInString(term) > limits.TermMaxLen:
		return &ValidationError{Field: "term", Reason: fmt.Sprintf("longer than %d characters", limits.TermMaxLen)}
	case strings.TrimSpace(displayName) == "":
		return &ValidationError{Field: "username", Reason: "must not be empty"}
	case utf8.RuneCountInString(displayName) > limits.NameMaxLen:
		return &ValidationError{Field: "username", Reason: fmt.Sprintf("longer than %d characters", limits.NameMaxLen)}
	case strings.TrimSpace(ownerToken) == "":
		return &ValidationError{Field: "clientToken", Reason: "must not be empty"}
	}
	return nil
}
