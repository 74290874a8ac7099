// internal/fill/session.go
//
// Formdesk - live fill-in session.
//
// Context
//   Session is the state machine behind the respondent's view of one form.
//   It keeps one slot per field type (value, touched, error), recomputes
//   whole-form validity after every edit with the same rule table the
//   server uses, and only lets a valid answer set leave the machine.
//
// Workflow
//   •  Load resets every slot of the new form to "" / untouched.
//   •  Edit records a value, marks the slot touched, and re-validates.
//   •  Error surfaces a slot's hint only once it has been touched.
//   •  Save sends {formId, responses} through a Submitter and closes the
//      session only when the server confirms; failures keep it open with
//      a generic message.
//
// Notes
//   •  Not safe for concurrent use; one UI goroutine drives a Session.
//   •  Double-submit is not guarded.
//
//------------------------------------------------------------------------------

package fill

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/yanizio/formdesk/internal/field"
	"github.com/yanizio/formdesk/internal/form"
)

// SaveFailed is shown after any transport or server error.
const SaveFailed = "Failed to save form responses. Please try again."

var (
	ErrUnknownField = errors.New("field is not part of this form")
	ErrInvalid      = errors.New("form has invalid or missing answers")
	ErrClosed       = errors.New("session is closed")
)

// Submitter delivers a response set.  *client.Client satisfies it.
type Submitter interface {
	SubmitResponse(ctx context.Context, req form.SubmitRequest) (*form.Response, error)
}

type slot struct {
	value   string
	touched bool
	err     string
}

// Session is the fill-in state for one form.  The zero value has no form
// loaded; call Load first.
type Session struct {
	form    *form.Form
	slots   map[string]*slot
	visible map[int64]bool
	valid   bool
	failure string
	done    bool
	saved   *form.Response
}

// New returns a session with f loaded.
func New(f *form.Form) *Session {
	s := &Session{}
	s.Load(f)
	return s
}

// Load switches the session to f and resets all state.  A nil f leaves an
// empty session that never validates.
func (s *Session) Load(f *form.Form) {
	s.form = f
	s.slots = make(map[string]*slot)
	if f != nil {
		for _, fd := range f.Fields {
			s.slots[fd.Key()] = &slot{}
		}
	}
	s.visible = make(map[int64]bool)
	s.failure = ""
	s.done = false
	s.saved = nil
	s.recompute()
}

// Form returns the loaded form, or nil.
func (s *Session) Form() *form.Form { return s.form }

// Edit sets the value of the slot named key.
func (s *Session) Edit(key, value string) error {
	if s.done {
		return ErrClosed
	}
	sl, ok := s.slots[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	t, err := field.ParseType(key)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}

	sl.value = value
	sl.touched = true
	sl.err = field.Validate(t, value)
	s.recompute()
	return nil
}

// recompute derives validity over the full field list.  Untouched slots
// still count: an empty required field keeps the form invalid.
func (s *Session) recompute() {
	if s.form == nil {
		s.valid = false
		return
	}
	s.valid = true
	for _, fd := range s.form.Fields {
		if field.Validate(fd.Type, s.slots[fd.Key()].value) != "" {
			s.valid = false
			return
		}
	}
}

// Value returns the current value of key.
func (s *Session) Value(key string) string {
	if sl, ok := s.slots[key]; ok {
		return sl.value
	}
	return ""
}

// Touched reports whether key has been edited since Load.
func (s *Session) Touched(key string) bool {
	sl, ok := s.slots[key]
	return ok && sl.touched
}

// Error returns the hint to display beside key, or "" while untouched.
func (s *Session) Error(key string) string {
	sl, ok := s.slots[key]
	if !ok || !sl.touched {
		return ""
	}
	return sl.err
}

// Valid reports whether Save would be allowed.
func (s *Session) Valid() bool { return s.valid }

// Failure is the message from the last failed Save, or "".
func (s *Session) Failure() string { return s.failure }

// Done reports whether the view should close.
func (s *Session) Done() bool { return s.done }

// Saved returns the stored response after a successful Save.
func (s *Session) Saved() *form.Response { return s.saved }

// Responses returns a copy of the value map, keyed by field type.
func (s *Session) Responses() map[string]string {
	out := make(map[string]string, len(s.slots))
	for k, sl := range s.slots {
		out[k] = sl.value
	}
	return out
}

// Keys lists the slot keys in sorted order.
func (s *Session) Keys() []string {
	keys := make([]string, 0, len(s.slots))
	for k := range s.slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

/*──────────────────────────── visibility ───────────────────────────────────*/

// ToggleVisibility flips the masked state of a password field.  Other field
// types are never masked and ignore the toggle.
func (s *Session) ToggleVisibility(fieldID int64) error {
	fd, ok := s.lookup(fieldID)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownField, fieldID)
	}
	if fd.Type.Masked() {
		s.visible[fieldID] = !s.visible[fieldID]
	}
	return nil
}

// Masked reports whether the field renders hidden.
func (s *Session) Masked(fieldID int64) bool {
	fd, ok := s.lookup(fieldID)
	return ok && fd.Type.Masked() && !s.visible[fieldID]
}

// InputType is the HTML input type to render for d.
func (s *Session) InputType(d field.Def) string {
	if d.Type.Masked() && s.visible[d.ID] {
		return field.Text.String()
	}
	return d.Type.String()
}

func (s *Session) lookup(id int64) (field.Def, bool) {
	if s.form == nil {
		return field.Def{}, false
	}
	for _, fd := range s.form.Fields {
		if fd.ID == id {
			return fd, true
		}
	}
	return field.Def{}, false
}

/*──────────────────────────── save / cancel ────────────────────────────────*/

// Save submits the current answers.  It returns ErrInvalid without sending
// anything unless Valid.  On success the session is Done; on failure it
// stays open with Failure set and the underlying error returned.
func (s *Session) Save(ctx context.Context, sub Submitter) error {
	if s.done {
		return ErrClosed
	}
	if !s.valid {
		return ErrInvalid
	}

	resp, err := sub.SubmitResponse(ctx, form.SubmitRequest{
		FormID:  s.form.ID,
		Answers: s.Responses(),
	})
	if err != nil {
		s.failure = SaveFailed
		return err
	}

	s.failure = ""
	s.saved = resp
	s.done = true
	return nil
}

// Cancel discards the answers and closes the session without sending.
func (s *Session) Cancel() {
	for _, sl := range s.slots {
		*sl = slot{}
	}
	s.visible = make(map[int64]bool)
	s.failure = ""
	s.done = true
}
