package builder

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/formdesk/internal/field"
	"github.com/yanizio/formdesk/internal/form"
)

var t0 = time.UnixMilli(1712345678901)

func frozen() Option { return WithClock(func() time.Time { return t0 }) }

type fakeSaver struct {
	created []form.Draft
	updated map[form.ID]form.Draft
	fail    error
}

func (f *fakeSaver) CreateForm(_ context.Context, d form.Draft) (*form.Form, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.created = append(f.created, d)
	return &form.Form{ID: d.ID, Name: d.Name, Fields: d.Fields}, nil
}

func (f *fakeSaver) UpdateForm(_ context.Context, id form.ID, d form.Draft) (*form.Form, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	if f.updated == nil {
		f.updated = map[form.ID]form.Draft{}
	}
	f.updated[id] = d
	return &form.Form{ID: id, Name: d.Name, Fields: d.Fields}, nil
}

func TestAddFieldStartsEditing(t *testing.T) {
	d := New(frozen())

	id, err := d.AddField(field.Email)
	require.NoError(t, err)

	f, ok := d.Field(id)
	require.True(t, ok)
	assert.Equal(t, field.Email, f.Type)
	assert.True(t, f.IsEditing)
	assert.False(t, f.Confirmed)
	assert.False(t, f.TitleError)
	assert.Empty(t, f.Title)
}

func TestAddFieldIDsUniqueWithinMillisecond(t *testing.T) {
	d := New(frozen())
	a, _ := d.AddField(field.Text)
	b, _ := d.AddField(field.Text)
	c, _ := d.AddField(field.Number)

	assert.Equal(t, t0.UnixMilli(), a)
	assert.Equal(t, a+1, b)
	assert.Equal(t, b+1, c)
}

func TestAddFieldCap(t *testing.T) {
	d := New()
	for i := 0; i < MaxFields; i++ {
		_, err := d.AddField(field.Text)
		require.NoError(t, err)
	}

	_, err := d.AddField(field.Text)
	assert.ErrorIs(t, err, ErrTooManyFields)
	assert.Equal(t, "You can only add up to 20 inputs.", d.Failure())
	assert.Equal(t, MaxFields, d.Len())

	require.NoError(t, d.Remove(d.Fields()[0].ID))
	assert.Empty(t, d.Failure())
	_, err = d.AddField(field.Date)
	assert.NoError(t, err)
}

func TestAddFieldRejectsUnknownType(t *testing.T) {
	_, err := New().AddField(field.Type(0))
	assert.ErrorIs(t, err, field.ErrUnknownType)
}

func TestConfirmBlankTitle(t *testing.T) {
	d := New()
	id, _ := d.AddField(field.Text)
	require.NoError(t, d.SetTitle(id, "   "))
	require.NoError(t, d.Confirm(id))

	f, _ := d.Field(id)
	assert.True(t, f.TitleError)
	assert.False(t, f.Confirmed)
	assert.False(t, f.IsEditing)
	assert.False(t, d.Valid())
}

func TestConfirmEditCycle(t *testing.T) {
	d := New()
	id, _ := d.AddField(field.Text)
	require.NoError(t, d.SetTitle(id, "Name"))
	require.NoError(t, d.SetPlaceholder(id, "Ada"))
	require.NoError(t, d.Confirm(id))

	f, _ := d.Field(id)
	assert.True(t, f.Confirmed)
	assert.False(t, f.TitleError)
	assert.Equal(t, "Ada", f.Placeholder)
	assert.True(t, d.Valid())

	require.NoError(t, d.Edit(id))
	f, _ = d.Field(id)
	assert.True(t, f.IsEditing)
	assert.False(t, f.Confirmed)
	assert.False(t, d.Valid())

	assert.ErrorIs(t, d.Confirm(42), ErrUnknownField)
	assert.ErrorIs(t, d.Remove(42), ErrUnknownField)
}

func TestValidRequiresFields(t *testing.T) {
	assert.False(t, New().Valid())
}

func TestSaveChecks(t *testing.T) {
	s := &fakeSaver{}

	d := New()
	_, err := d.Save(context.Background(), s)
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.Equal(t, "Please provide a name for the form.", d.Failure())

	d.SetName("Signup")
	_, err = d.Save(context.Background(), s)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Equal(t, "Form cannot be empty, enter some fields.", d.Failure())

	_, _ = d.AddField(field.Email)
	_, err = d.Save(context.Background(), s)
	assert.ErrorIs(t, err, ErrUnconfirmed)

	assert.Empty(t, s.created)
	assert.False(t, d.Done())
}

func TestSaveCreate(t *testing.T) {
	d := New(frozen())
	d.SetName("Signup")
	id, _ := d.AddField(field.Email)
	require.NoError(t, d.SetTitle(id, "E-mail"))
	require.NoError(t, d.Confirm(id))

	s := &fakeSaver{}
	out, err := d.Save(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, s.created, 1)
	sent := s.created[0]
	assert.Equal(t, "Signup", sent.Name)
	assert.NotZero(t, sent.ID)
	assert.NotEqual(t, form.ID(id), sent.ID, "form id minted after field ids")
	assert.Equal(t, sent.ID, out.ID)
	assert.True(t, d.Done())

	_, err = d.Save(context.Background(), s)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSaveUpdate(t *testing.T) {
	stored := &form.Form{
		ID:   99,
		Name: "Old",
		Fields: form.Fields{
			{ID: 5, Type: field.Number, Title: "Age", Confirmed: true},
		},
	}
	d := FromForm(stored, frozen())
	assert.True(t, d.Editing())
	assert.True(t, d.Valid())

	d.SetName("New")
	s := &fakeSaver{}
	_, err := d.Save(context.Background(), s)
	require.NoError(t, err)

	assert.Empty(t, s.created)
	require.Contains(t, s.updated, form.ID(99))
	assert.Equal(t, "New", s.updated[99].Name)
	assert.Equal(t, form.ID(99), s.updated[99].ID)
}

func TestSaveFailureStaysOpen(t *testing.T) {
	d := New(frozen())
	d.SetName("Signup")
	id, _ := d.AddField(field.Text)
	_ = d.SetTitle(id, "Name")
	_ = d.Confirm(id)

	boom := errors.New("503")
	_, err := d.Save(context.Background(), &fakeSaver{fail: boom})
	assert.ErrorIs(t, err, boom)
	assert.False(t, d.Done())
	assert.Equal(t, MsgSaveFailed, d.Failure())

	first := d.Payload().ID
	s := &fakeSaver{}
	_, err = d.Save(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, first, s.created[0].ID, "retry reuses the form id")
}

func TestPayloadWireShape(t *testing.T) {
	d := New(frozen())
	d.SetName("Survey")
	id, _ := d.AddField(field.Date)
	_ = d.SetTitle(id, "When")
	_ = d.Confirm(id)

	b, err := json.Marshal(d.Payload())
	require.NoError(t, err)

	var parts []map[string]any
	require.NoError(t, json.Unmarshal(b, &parts))
	require.Len(t, parts, 2)
	assert.Equal(t, "Survey", parts[0]["FormName"])
	assert.Equal(t, "date", parts[1]["type"])
	assert.Equal(t, true, parts[1]["confirmed"])
}

func TestCancel(t *testing.T) {
	d := New()
	d.Cancel()
	assert.True(t, d.Done())
	_, err := d.Save(context.Background(), &fakeSaver{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClosedDraftRejectsEdits(t *testing.T) {
	d := New()
	id, err := d.AddField(field.Text)
	require.NoError(t, err)
	d.Cancel()

	_, err = d.AddField(field.Email)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, d.Remove(id), ErrClosed)
	assert.ErrorIs(t, d.SetTitle(id, "x"), ErrClosed)
	assert.Len(t, d.Fields(), 1, "closed draft keeps its fields")
}

func TestWithFormID(t *testing.T) {
	d := New(WithFormID(77))
	assert.Equal(t, form.ID(77), d.Payload().ID)
	assert.False(t, d.Editing())
}
