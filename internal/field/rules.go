// internal/field/rules.go
//
// Formdesk - field rule table.
//
// Context
//   One predicate per field type, shared by the live fill session (client
//   hints) and the submission service (server violations).  Both pipelines
//   must reach the same verdict for the same (type, value) pair, so the
//   predicate lives here exactly once and only the wording differs.
//
// Workflow
//   •  Validate returns the short hint shown beside an input, or "".
//   •  Check returns a *Violation carrying the server message, or nil.
//   •  password and date accept any string.  Hashing of passwords is a
//      separate transform owned by the form service.
//
//------------------------------------------------------------------------------

package field

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// emailPattern: local part, "@", dot-separated domain, 2-6 letter TLD.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

type rule struct {
	ok        func(string) bool
	hint      string // client-side wording
	violation string // server-side wording, %s receives the type name
}

var rules = [numTypes]rule{
	Email: {
		ok:        func(v string) bool { return v != "" && emailPattern.MatchString(v) },
		hint:      "Please enter a valid email address.",
		violation: "Invalid email format for field type: %s",
	},
	Text: {
		ok:        func(v string) bool { return strings.TrimSpace(v) != "" },
		hint:      "This field is required.",
		violation: "Invalid text value for field type: %s",
	},
	Number: {
		ok:        isNumeric,
		hint:      "Please enter a valid number.",
		violation: "Invalid number format for field type: %s",
	},
	Password: {ok: anyValue},
	Date:     {ok: anyValue},
}

func anyValue(string) bool { return true }

// isNumeric follows the browser's Number(string) coercion: optional
// surrounding whitespace, a signed decimal with optional exponent, a signed
// "Infinity", or an unsigned 0x/0o/0b integer.  The empty string is rejected
// even though the browser coerces it to 0.
func isNumeric(v string) bool {
	s := strings.TrimSpace(v)
	if s == "" {
		return false
	}
	switch s {
	case "Infinity", "+Infinity", "-Infinity":
		return true
	}
	if len(s) > 2 && s[0] == '0' {
		if base := radix(s[1]); base != 0 {
			_, err := strconv.ParseUint(s[2:], base, 64)
			return err == nil || errors.Is(err, strconv.ErrRange)
		}
	}
	// ParseFloat also takes inf, nan, hex floats and digit separators.
	if strings.ContainsAny(s, "_xXpPiInN") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}

func radix(c byte) int {
	switch c {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

// Violation is the server-side verdict for one offending field.
type Violation struct {
	Type    Type
	Message string
}

func (v *Violation) Error() string { return v.Message }

// Validate runs the rule for t and returns a user-facing hint, or "" when
// value is acceptable.  Unknown types never validate.
func Validate(t Type, value string) string {
	if !t.Valid() {
		return "Unsupported field type."
	}
	r := rules[t]
	if r.ok(value) {
		return ""
	}
	return r.hint
}

// Check is the server-side twin of Validate.  It returns nil exactly when
// Validate returns "".
func Check(t Type, value string) error {
	if !t.Valid() {
		return &Violation{Type: t, Message: "Unsupported field type: " + t.String()}
	}
	r := rules[t]
	if r.ok(value) {
		return nil
	}
	return &Violation{Type: t, Message: fmt.Sprintf(r.violation, t.String())}
}

