// internal/builder/draft.go
//
// Formdesk - form builder state machine.
//
// Context
//   Draft models an author assembling a form: a name plus an ordered list of
//   field definitions, each moving through editing → confirmed.  It mirrors
//   the rules the server enforces so an author learns about a missing title
//   or name before anything is sent.
//
// Lifecycle of one field
//   AddField      → isEditing=true,  confirmed=false
//   Confirm       → isEditing=false, confirmed=!blank(title), titleError=blank(title)
//   Edit          → isEditing=true,  confirmed=false
//   Remove        → gone
//
// Notes
//   •  Field and form ids are millisecond timestamps, bumped when two are
//      minted inside the same millisecond.
//   •  Save closes the draft only on confirmed success.
//
//------------------------------------------------------------------------------

package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yanizio/formdesk/internal/field"
	"github.com/yanizio/formdesk/internal/form"
)

// MaxFields caps the inputs on one form.
const MaxFields = form.DefaultMaxFields

// User-facing messages.
const (
	MsgTooManyFields = "You can only add up to 20 inputs."
	MsgNameRequired  = "Please provide a name for the form."
	MsgEmpty         = "Form cannot be empty, enter some fields."
	MsgSaveFailed    = "Failed to save form. Please try again."
)

var (
	ErrTooManyFields = errors.New(MsgTooManyFields)
	ErrNameRequired  = errors.New(MsgNameRequired)
	ErrEmpty         = errors.New(MsgEmpty)
	ErrUnconfirmed   = errors.New("every field must be confirmed with a title")
	ErrUnknownField  = errors.New("no such field")
	ErrClosed        = errors.New("builder is closed")
)

// Saver persists a finished draft.  *client.Client satisfies it.
type Saver interface {
	CreateForm(ctx context.Context, d form.Draft) (*form.Form, error)
	UpdateForm(ctx context.Context, id form.ID, d form.Draft) (*form.Form, error)
}

// Option configures a Draft.
type Option func(*Draft)

// WithClock replaces time.Now for id generation.
func WithClock(now func() time.Time) Option { return func(d *Draft) { d.now = now } }

// WithFormID fixes the id a create-mode draft is saved under instead of
// minting one.
func WithFormID(id form.ID) Option { return func(d *Draft) { d.formID = id } }

// Draft is the builder state.  Not safe for concurrent use.
type Draft struct {
	name   string
	fields []field.Def

	editing bool
	formID  form.ID

	failure string
	done    bool
	saved   *form.Form

	now    func() time.Time
	lastID int64
}

// New starts an empty draft in create mode.
func New(opts ...Option) *Draft {
	d := &Draft{now: time.Now}
	for _, o := range opts {
		o(d)
	}
	return d
}

// FromForm starts a draft in edit mode from a stored form.  Loaded fields
// keep their flags, so a previously confirmed form is immediately savable.
func FromForm(f *form.Form, opts ...Option) *Draft {
	d := New(opts...)
	d.editing = true
	d.formID = f.ID
	d.name = f.Name
	d.fields = append([]field.Def(nil), f.Fields...)
	for _, fd := range d.fields {
		if fd.ID > d.lastID {
			d.lastID = fd.ID
		}
	}
	return d
}

/*──────────────────────────── accessors ────────────────────────────────────*/

func (d *Draft) Name() string        { return d.name }
func (d *Draft) SetName(name string) { d.name = name }
func (d *Draft) Editing() bool       { return d.editing }
func (d *Draft) FormID() form.ID     { return d.formID }
func (d *Draft) Failure() string     { return d.failure }
func (d *Draft) Done() bool          { return d.done }
func (d *Draft) Saved() *form.Form   { return d.saved }
func (d *Draft) Len() int            { return len(d.fields) }
func (d *Draft) Fields() []field.Def { return append([]field.Def(nil), d.fields...) }

// Field returns the definition with the given id.
func (d *Draft) Field(id int64) (field.Def, bool) {
	if i := d.index(id); i >= 0 {
		return d.fields[i], true
	}
	return field.Def{}, false
}

/*──────────────────────────── field lifecycle ──────────────────────────────*/

// AddField appends an empty field of type t in editing state and returns its
// id.
func (d *Draft) AddField(t field.Type) (int64, error) {
	if d.done {
		return 0, ErrClosed
	}
	if !t.Valid() {
		return 0, field.ErrUnknownType
	}
	if len(d.fields) >= MaxFields {
		d.failure = MsgTooManyFields
		return 0, ErrTooManyFields
	}
	id := d.mint()
	d.fields = append(d.fields, field.Def{
		ID:        id,
		Type:      t,
		IsEditing: true,
	})
	return id, nil
}

// SetTitle updates a field's label.
func (d *Draft) SetTitle(id int64, title string) error {
	return d.update(id, func(f *field.Def) { f.Title = title })
}

// SetPlaceholder updates a field's placeholder.
func (d *Draft) SetPlaceholder(id int64, placeholder string) error {
	return d.update(id, func(f *field.Def) { f.Placeholder = placeholder })
}

// Confirm finishes editing a field.  A blank title flags titleError and
// leaves the field unconfirmed.
func (d *Draft) Confirm(id int64) error {
	return d.update(id, func(f *field.Def) {
		f.TitleError = strings.TrimSpace(f.Title) == ""
		f.Confirmed = !f.TitleError
		f.IsEditing = false
	})
}

// Edit reopens a confirmed field.
func (d *Draft) Edit(id int64) error {
	return d.update(id, func(f *field.Def) {
		f.IsEditing = true
		f.Confirmed = false
	})
}

// Remove drops a field.
func (d *Draft) Remove(id int64) error {
	if d.done {
		return ErrClosed
	}
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownField, id)
	}
	d.fields = append(d.fields[:i], d.fields[i+1:]...)
	if d.failure == MsgTooManyFields {
		d.failure = ""
	}
	return nil
}

// Valid reports whether the save action is enabled: at least one field and
// every field confirmed without a title error.
func (d *Draft) Valid() bool {
	if len(d.fields) == 0 {
		return false
	}
	for _, f := range d.fields {
		if !f.Confirmed || f.TitleError {
			return false
		}
	}
	return true
}

/*──────────────────────────── save ─────────────────────────────────────────*/

// Payload builds the wire draft.  In create mode the form id is minted on
// first use and reused for retries.
func (d *Draft) Payload() form.Draft {
	if d.formID == 0 {
		d.formID = form.ID(d.mint())
	}
	return form.Draft{
		Name:   d.name,
		ID:     d.formID,
		Fields: d.Fields(),
	}
}

// Save checks the name and field list, then creates or updates the form
// through s.  The draft is Done only when s reports success.
func (d *Draft) Save(ctx context.Context, s Saver) (*form.Form, error) {
	if d.done {
		return nil, ErrClosed
	}
	if strings.TrimSpace(d.name) == "" {
		d.failure = MsgNameRequired
		return nil, ErrNameRequired
	}
	if len(d.fields) == 0 {
		d.failure = MsgEmpty
		return nil, ErrEmpty
	}
	if !d.Valid() {
		return nil, ErrUnconfirmed
	}

	var (
		out *form.Form
		err error
	)
	if d.editing {
		out, err = s.UpdateForm(ctx, d.formID, d.Payload())
	} else {
		out, err = s.CreateForm(ctx, d.Payload())
	}
	if err != nil {
		d.failure = MsgSaveFailed
		return nil, err
	}

	d.failure = ""
	d.saved = out
	d.done = true
	return out, nil
}

// Cancel closes the draft without saving.
func (d *Draft) Cancel() { d.done = true }

/*──────────────────────────── helpers ──────────────────────────────────────*/

func (d *Draft) index(id int64) int {
	for i := range d.fields {
		if d.fields[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Draft) update(id int64, fn func(*field.Def)) error {
	if d.done {
		return ErrClosed
	}
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownField, id)
	}
	fn(&d.fields[i])
	return nil
}

// mint returns a millisecond timestamp strictly greater than any id handed
// out before.
func (d *Draft) mint() int64 {
	id := d.now().UnixMilli()
	if id <= d.lastID {
		id = d.lastID + 1
	}
	d.lastID = id
	return id
}
