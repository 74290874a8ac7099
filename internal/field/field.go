// internal/field/field.go
//
// Formdesk - field taxonomy.
//
// Context
//   Every form is an ordered list of field definitions drawn from a closed set
//   of five input types.  The type decides both the rendered input kind and the
//   validation rule applied to answers (see rules.go).  The same package is
//   imported by the live fill session and by the server-side submission
//   service, so both pipelines agree on names, flags, and verdicts.
//
// Notes
//   •  Type is a small integer enum.  JSON and YAML carry the lowercase name.
//   •  Unknown names never decode; callers get ErrUnknownType instead.
//
//------------------------------------------------------------------------------

package field

import (
	"errors"
	"fmt"
)

// Type enumerates the supported input kinds.  The zero value is invalid so a
// forgotten assignment cannot masquerade as a real field.
type Type uint8

const (
	invalid Type = iota
	Email
	Text
	Password
	Number
	Date

	numTypes // sentinel, keep last
)

// ErrUnknownType is returned when a type name is outside the closed set.
var ErrUnknownType = errors.New("unknown field type")

var names = [numTypes]string{
	Email:    "email",
	Text:     "text",
	Password: "password",
	Number:   "number",
	Date:     "date",
}

// Types returns every supported type in builder palette order.
func Types() []Type {
	return []Type{Email, Text, Password, Number, Date}
}

// ParseType maps a wire name to its Type.
func ParseType(s string) (Type, error) {
	for t := Email; t < numTypes; t++ {
		if names[t] == s {
			return t, nil
		}
	}
	return invalid, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Valid reports whether t is one of the five supported types.
func (t Type) Valid() bool { return t > invalid && t < numTypes }

// String returns the wire name, or "invalid" for out-of-range values.
func (t Type) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return names[t]
}

// Masked reports whether inputs of this type render hidden by default.
// Only password fields carry the visibility toggle.
func (t Type) Masked() bool { return t == Password }

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
	return []byte(names[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Def describes one input on a form.  The lifecycle flags are only meaningful
// in the builder; the server stores whatever the author sent.
type Def struct {
	ID          int64  `json:"id"          yaml:"id"`
	Type        Type   `json:"type"        yaml:"type"        validate:"field_type"`
	Title       string `json:"title"       yaml:"title"       validate:"required,notblank"`
	Placeholder string `json:"placeholder" yaml:"placeholder"`

	Confirmed  bool `json:"confirmed"  yaml:"-"`
	TitleError bool `json:"titleError" yaml:"-"`
	IsEditing  bool `json:"isEditing"  yaml:"-"`
}

// Key returns the response slot this field writes to.  Answers are keyed by
// type, so two fields of the same type share a slot.
func (d Def) Key() string { return d.Type.String() }
