package component

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/formdesk/internal/form"
)

type stub struct {
	name    string
	path    string
	initErr error
	inited  bool
}

func (s *stub) Name() string { return s.name }
func (s *stub) Init(Deps) error {
	s.inited = true
	return s.initErr
}
func (s *stub) Routes(r chi.Router) {
	r.Get(s.path, func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(s.name)) })
}

type noDeps struct{}

func (noDeps) Forms() *form.Service { return nil }
func (noDeps) Pinger() Pinger       { return nil }

func reset(t *testing.T) {
	mu.Lock()
	saved := registry
	registry = map[string]Component{}
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		registry = saved
		mu.Unlock()
	})
}

func TestMountAndInit(t *testing.T) {
	reset(t)
	a := &stub{name: "a", path: "/a"}
	b := &stub{name: "b", path: "/b"}
	Register(b)
	Register(a)

	require.NoError(t, InitAll(noDeps{}))
	assert.True(t, a.inited && b.inited)

	r := chi.NewRouter()
	Mount(r)
	for _, p := range []string{"/a", "/b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, p[1:], rec.Body.String())
	}
	assert.Equal(t, "a", All()[0].Name())
}

func TestInitAllStopsOnError(t *testing.T) {
	reset(t)
	Register(&stub{name: "bad", path: "/x", initErr: errors.New("boom")})
	assert.ErrorContains(t, InitAll(noDeps{}), "init component bad")
}

func TestRegisterTwicePanics(t *testing.T) {
	reset(t)
	Register(&stub{name: "dup"})
	assert.Panics(t, func() { Register(&stub{name: "dup"}) })
}
