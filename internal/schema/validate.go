package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidJSON        = errors.New("invalid JSON value")
	ErrShapeMismatch      = errors.New("JSON value has the wrong shape")
	ErrConflictingOptions = errors.New("conflicting options")
	ErrOutOfRange         = errors.New("value out of range")
)

// UsageError is a structural parse failure: wrong arity, unknown flags,
// conflicting flags, out-of-range numbers, malformed structured options. The
// command driver prints it together with the usage line and exits non-zero.
type UsageError struct {
	Message string
	Err     error
}

func (e *UsageError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return e.Message + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Message
}

func (e *UsageError) Unwrap() error { return e.Err }

// Usagef builds a *UsageError the way fmt.Errorf builds errors.
func Usagef(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// Rejection is the soft validation outcome for a rejected email address. The
// command driver prints Message verbatim to standard output and signals
// failure without showing usage help; no component below the driver
// terminates the process.
type Rejection struct {
	Message string
}

func (e *Rejection) Error() string { return e.Message }

// emailRegex implements a practical RFC 2822 mailbox check: a printable
// local part, an @, and a domain containing at least one dot.
var emailRegex = regexp.MustCompile(`^[^@\s]+@([^@\s.]+\.)+[^@\s.]+$`)

// ValidateEmail returns a *Rejection carrying the user-facing diagnostic when
// addr is not a practical RFC 2822 mailbox.
func ValidateEmail(addr string) error {
	if emailRegex.MatchString(addr) {
		return nil
	}
	return &Rejection{Message: fmt.Sprintf(
		"error: the given email address %s is not a valid RFC2822 email "+
			"address, check http://www.rfc-editor.org/rfc/rfc2822.txt for "+
			"very extended details", addr)}
}

// JSONMapValue parses raw as a JSON object and flattens its values to
// strings.
func JSONMapValue(raw string) (map[string]string, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrShapeMismatch)
	}
	m := make(map[string]string, len(obj))
	for k, item := range obj {
		m[k] = stringify(item)
	}
	return m, nil
}

// JSONListValue parses raw as a JSON array and flattens its elements to
// strings.
func JSONListValue(raw string) ([]string, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	seq, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrShapeMismatch)
	}
	out := make([]string, 0, len(seq))
	for _, item := range seq {
		out = append(out, stringify(item))
	}
	return out, nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ValidateExclusive fails when more than one of the named flags is set on c.
func ValidateExclusive(c *Configuration, names ...string) error {
	var set []string
	for _, name := range names {
		if c.Bool(name) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		return fmt.Errorf("%w: %s cannot be used together",
			ErrConflictingOptions, strings.Join(set, " and "))
	}
	return nil
}

// ValidateRange fails when value falls outside [low, high].
func ValidateRange(name string, value, low, high int) error {
	if value < low || value > high {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d",
			ErrOutOfRange, name, low, high, value)
	}
	return nil
}
