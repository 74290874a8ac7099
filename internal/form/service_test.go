// internal/form/service_test.go
//
// Unit-tests for Service against an in-memory Store.
//
// Run: go test ./internal/form -v

package form

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/formdesk/internal/field"
)

// memStore is a map-backed Store used across this package's tests.
type memStore struct {
	mu        sync.Mutex
	forms     map[ID]Form
	responses []Response
	gets      int
	failSave  error
	// racer, when set, inserts a competing form just before CreateForm runs.
	racer *Form
}

func newMemStore() *memStore { return &memStore{forms: map[ID]Form{}} }

func (m *memStore) ListForms(_ context.Context, owner string) ([]Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Form
	for _, f := range m.forms {
		if f.CreatedBy == owner {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetForm(_ context.Context, id ID) (*Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	f, ok := m.forms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (m *memStore) CreateForm(_ context.Context, f *Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.racer != nil {
		m.forms[m.racer.ID] = *m.racer
		m.racer = nil
	}
	if _, dup := m.forms[f.ID]; dup {
		return ErrConflict
	}
	m.forms[f.ID] = *f
	return nil
}

func (m *memStore) UpdateForm(_ context.Context, owner string, id ID, name string, fields Fields) (*Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[id]
	if !ok || f.CreatedBy != owner {
		return nil, ErrNotFound
	}
	f.Name, f.Fields = name, fields
	m.forms[id] = f
	return &f, nil
}

func (m *memStore) DeleteForm(_ context.Context, owner string, id ID) (*Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[id]
	if !ok || f.CreatedBy != owner {
		return nil, ErrNotFound
	}
	delete(m.forms, id)
	return &f, nil
}

func (m *memStore) SaveResponse(_ context.Context, r *Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != nil {
		return m.failSave
	}
	m.responses = append(m.responses, *r)
	return nil
}

// countingHasher records every call so tests can assert hash-once behaviour.
type countingHasher struct{ calls []string }

func (h *countingHasher) Hash(p string) (string, error) {
	h.calls = append(h.calls, p)
	return "hashed:" + p, nil
}

type spyCache struct {
	store       Store
	invalidated []ID
}

func (c *spyCache) Get(ctx context.Context, id ID) (*Form, error) { return c.store.GetForm(ctx, id) }
func (c *spyCache) Invalidate(id ID)                              { c.invalidated = append(c.invalidated, id) }

var fixedNow = time.Date(2024, 4, 5, 10, 30, 0, 0, time.UTC)

func newTestService(st Store, opts ...Option) (*Service, *countingHasher) {
	h := &countingHasher{}
	opts = append([]Option{WithHasher(h), WithClock(func() time.Time { return fixedNow })}, opts...)
	s := NewService(st, opts...)
	s.newID = func() string { return "resp-1" }
	return s, h
}

func def(id int64, t field.Type, title string) field.Def {
	return field.Def{ID: id, Type: t, Title: title, Confirmed: true}
}

func seed(st *memStore, id ID, owner string, fields ...field.Def) {
	st.forms[id] = Form{ID: id, Name: "F" + id.String(), Fields: fields, CreatedBy: owner, CreatedAt: fixedNow}
}

// -----------------------------------------------------------------------------
// Authoring
// -----------------------------------------------------------------------------

func TestCreateStoresOwnedForm(t *testing.T) {
	st := newMemStore()
	s, _ := newTestService(st)

	f, err := s.Create(context.Background(), "a@x.com", Draft{
		Name:   "Signup",
		ID:     7,
		Fields: []field.Def{def(1, field.Email, "Email")},
	})
	require.NoError(t, err)
	assert.Equal(t, ID(7), f.ID)
	assert.Equal(t, "a@x.com", f.CreatedBy)
	assert.Equal(t, fixedNow, f.CreatedAt)

	listed, err := s.List(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Signup", listed[0].Name)
}

func TestCreateRejections(t *testing.T) {
	cases := []struct {
		name  string
		owner string
		draft Draft
		want  error
		msg   string
	}{
		{"no identity", "", Draft{Name: "X", ID: 1, Fields: []field.Def{def(1, field.Text, "T")}}, ErrForbidden, ""},
		{"blank name", "a", Draft{Name: "  ", ID: 1, Fields: []field.Def{def(1, field.Text, "T")}}, ErrBadRequest, "FormName is required."},
		{"missing id", "a", Draft{Name: "X", Fields: []field.Def{def(1, field.Text, "T")}}, ErrBadRequest, "formId is required."},
		{"no fields", "a", Draft{Name: "X", ID: 1}, ErrBadRequest, "At least one field is required."},
		{"blank title", "a", Draft{Name: "X", ID: 1, Fields: []field.Def{def(1, field.Text, "")}}, ErrBadRequest, "Field 1 needs a title."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestService(newMemStore())
			_, err := s.Create(context.Background(), tc.owner, tc.draft)
			require.ErrorIs(t, err, tc.want)
			if tc.msg != "" {
				msgs, ok := Messages(err)
				require.True(t, ok)
				assert.Contains(t, strings.Join(msgs, " "), tc.msg)
			}
		})
	}
}

func TestCreateTooManyFields(t *testing.T) {
	s, _ := newTestService(newMemStore(), WithMaxFields(2))
	_, err := s.Create(context.Background(), "a", Draft{
		Name:   "X",
		ID:     1,
		Fields: []field.Def{def(1, field.Text, "a"), def(2, field.Text, "b"), def(3, field.Text, "c")},
	})
	require.ErrorIs(t, err, ErrBadRequest)
	msgs, _ := Messages(err)
	assert.Contains(t, msgs[0], "at most 2 fields")
}

func TestCreateDuplicateID(t *testing.T) {
	st := newMemStore()
	seed(st, 5, "someone@else", def(1, field.Text, "T"))
	s, _ := newTestService(st)

	_, err := s.Create(context.Background(), "a", Draft{Name: "X", ID: 5, Fields: []field.Def{def(1, field.Text, "T")}})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "someone@else", st.forms[5].CreatedBy, "existing form untouched")
}

func TestCreateLosingInsertRaceIsConflict(t *testing.T) {
	st := newMemStore()
	st.racer = &Form{ID: 5, Name: "Winner", CreatedBy: "b", CreatedAt: fixedNow}
	s, _ := newTestService(st)

	_, err := s.Create(context.Background(), "a", Draft{Name: "X", ID: 5, Fields: []field.Def{def(1, field.Text, "T")}})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Winner", st.forms[5].Name)
}

func TestListIsOwnerScoped(t *testing.T) {
	st := newMemStore()
	seed(st, 1, "a", def(1, field.Text, "T"))
	seed(st, 2, "b", def(1, field.Text, "T"))
	s, _ := newTestService(st)

	got, err := s.List(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ID(1), got[0].ID)

	none, err := s.List(context.Background(), "c")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = s.List(context.Background(), "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	st := newMemStore()
	seed(st, 1, "owner", def(1, field.Text, "T"))
	cache := &spyCache{store: st}
	s, _ := newTestService(st, WithCache(cache))
	ctx := context.Background()
	d := Draft{Name: "Renamed", Fields: []field.Def{def(1, field.Email, "E")}}

	_, err := s.Update(ctx, "intruder", 1, d)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Delete(ctx, "intruder", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "F1", st.forms[1].Name)
	assert.Empty(t, cache.invalidated)

	f, err := s.Update(ctx, "owner", 1, d)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", f.Name)
	assert.Equal(t, field.Email, f.Fields[0].Type)

	f, err = s.Delete(ctx, "owner", 1)
	require.NoError(t, err)
	assert.Equal(t, ID(1), f.ID)
	assert.Equal(t, []ID{1, 1}, cache.invalidated)

	_, err = s.Delete(ctx, "owner", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

// -----------------------------------------------------------------------------
// Submission
// -----------------------------------------------------------------------------

func TestSubmitStoresAndHashes(t *testing.T) {
	st := newMemStore()
	seed(st, 9, "owner", def(1, field.Email, "Email"), def(2, field.Password, "Pw"))
	s, h := newTestService(st)

	resp, err := s.Submit(context.Background(), SubmitRequest{
		FormID:  9,
		Answers: map[string]string{"email": "x@y.co", "password": "hunter2"},
	}, "respondent@x.com")
	require.NoError(t, err)

	assert.Equal(t, "resp-1", resp.ID)
	assert.Equal(t, "respondent@x.com", resp.SubmittedBy)
	assert.Equal(t, fixedNow, resp.SubmittedAt)
	assert.Equal(t, "hashed:hunter2", resp.Answers["password"])
	assert.Equal(t, "x@y.co", resp.Answers["email"])
	assert.Equal(t, []string{"hunter2"}, h.calls)
	require.Len(t, st.responses, 1)
}

func TestSubmitReportsEveryViolation(t *testing.T) {
	st := newMemStore()
	seed(st, 9, "owner", def(1, field.Email, "E"), def(2, field.Number, "N"), def(3, field.Text, "T"))
	s, _ := newTestService(st)

	_, err := s.Submit(context.Background(), SubmitRequest{
		FormID:  9,
		Answers: map[string]string{"email": "bad", "number": "abc"},
	}, "r")
	require.True(t, IsValidationError(err))

	msgs, _ := Messages(err)
	assert.Equal(t, []string{
		"Invalid email format for field type: email",
		"Invalid number format for field type: number",
		"Missing response for field type: text",
	}, msgs)
	assert.Empty(t, st.responses)
}

func TestSubmitHashesBeforeVerdict(t *testing.T) {
	st := newMemStore()
	seed(st, 4, "owner", def(1, field.Password, "Pw"), def(2, field.Email, "E"))
	s, h := newTestService(st)

	_, err := s.Submit(context.Background(), SubmitRequest{
		FormID:  4,
		Answers: map[string]string{"password": "p", "email": "bad"},
	}, "r")
	require.True(t, IsValidationError(err), "got %v", err)
	assert.Equal(t, []string{"p"}, h.calls, "password is hashed even when the submission is rejected")
	assert.Empty(t, st.responses)
}

func TestSubmitVerdictIsStable(t *testing.T) {
	st := newMemStore()
	seed(st, 6, "owner", def(1, field.Email, "E"), def(2, field.Number, "N"), def(3, field.Text, "T"))
	s, _ := newTestService(st)
	req := SubmitRequest{FormID: 6, Answers: map[string]string{"email": "nope", "number": "0x1A", "text": " "}}

	var runs [][]string
	for i := 0; i < 2; i++ {
		_, err := s.Submit(context.Background(), req, "r")
		require.True(t, IsValidationError(err))
		msgs, _ := Messages(err)
		runs = append(runs, msgs)
	}
	assert.Equal(t, runs[0], runs[1])
	assert.Equal(t, 2, st.gets, "each submission re-fetches the form")
}

func TestSubmitHashesSharedPasswordSlotOnce(t *testing.T) {
	st := newMemStore()
	seed(st, 3, "owner", def(1, field.Password, "Pw"), def(2, field.Password, "Confirm"))
	s, h := newTestService(st)

	resp, err := s.Submit(context.Background(), SubmitRequest{
		FormID:  3,
		Answers: map[string]string{"password": "p"},
	}, "r")
	require.NoError(t, err)
	assert.Equal(t, "hashed:p", resp.Answers["password"])
	assert.Len(t, h.calls, 1)
}

func TestSubmitAnswerMatrix(t *testing.T) {
	cases := []struct {
		name    string
		answers map[string]string
		valid   bool
	}{
		{"all good", map[string]string{"email": "a@b.co", "text": "hi", "number": "3.5", "date": "", "password": ""}, true},
		{"whitespace text", map[string]string{"email": "a@b.co", "text": "   ", "number": "1", "date": "x", "password": "x"}, false},
		{"empty number", map[string]string{"email": "a@b.co", "text": "t", "number": "", "date": "x", "password": "x"}, false},
		{"date unchecked", map[string]string{"email": "a@b.co", "text": "t", "number": "-2", "date": "not a date", "password": "x"}, true},
		{"missing date", map[string]string{"email": "a@b.co", "text": "t", "number": "1", "password": "x"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newMemStore()
			seed(st, 1, "o",
				def(1, field.Email, "E"), def(2, field.Text, "T"), def(3, field.Password, "P"),
				def(4, field.Number, "N"), def(5, field.Date, "D"))
			s, _ := newTestService(st)

			_, err := s.Submit(context.Background(), SubmitRequest{FormID: 1, Answers: tc.answers}, "r")
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsValidationError(err), "got %v", err)
			}
		})
	}
}

func TestSubmitErrors(t *testing.T) {
	st := newMemStore()
	seed(st, 1, "o", def(1, field.Text, "T"))
	s, _ := newTestService(st)
	ctx := context.Background()

	_, err := s.Submit(ctx, SubmitRequest{FormID: 1, Answers: map[string]string{"text": "x"}}, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Submit(ctx, SubmitRequest{FormID: 2, Answers: map[string]string{"text": "x"}}, "r")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Submit(ctx, SubmitRequest{FormID: 1}, "r")
	assert.ErrorIs(t, err, ErrBadRequest)

	st.failSave = errors.New("disk full")
	_, err = s.Submit(ctx, SubmitRequest{FormID: 1, Answers: map[string]string{"text": "x"}}, "r")
	require.Error(t, err)
	_, userFacing := Messages(err)
	assert.False(t, userFacing)
}

func TestSubmitLeavesInputUntouched(t *testing.T) {
	st := newMemStore()
	seed(st, 1, "o", def(1, field.Password, "P"))
	s, _ := newTestService(st)

	in := map[string]string{"password": "secret", "extra": "kept"}
	resp, err := s.Submit(context.Background(), SubmitRequest{FormID: 1, Answers: in}, "r")
	require.NoError(t, err)
	assert.Equal(t, "secret", in["password"])
	assert.Equal(t, "kept", resp.Answers["extra"])
}
