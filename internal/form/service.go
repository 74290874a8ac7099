// internal/form/service.go
//
// Formdesk - forms subsystem: authoring service.
//
// Context
//   Service is the single entry point HTTP handlers and the admin CLI use to
//   list, create, edit, delete, and answer forms.  It owns ownership checks,
//   draft validation, and cache invalidation; persistence is delegated to a
//   Store so the SQL layer can be swapped or mocked.
//
// Workflow
//   •  List / Create / Update / Delete are scoped to the caller's identity.
//   •  Get reads through the optional Cache (see internal/formcache).
//   •  Submit lives in submit.go.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yanizio/formdesk/internal/logger"
	"github.com/yanizio/formdesk/internal/metrics"
)

// Store persists forms and responses.  GetForm, UpdateForm, and DeleteForm
// return ErrNotFound when no matching row exists.
type Store interface {
	ListForms(ctx context.Context, owner string) ([]Form, error)
	GetForm(ctx context.Context, id ID) (*Form, error)
	CreateForm(ctx context.Context, f *Form) error
	UpdateForm(ctx context.Context, owner string, id ID, name string, fields Fields) (*Form, error)
	DeleteForm(ctx context.Context, owner string, id ID) (*Form, error)
	SaveResponse(ctx context.Context, r *Response) error
}

// Cache is a read-through form lookup.  Invalidate drops one entry after an
// edit or delete.
type Cache interface {
	Get(ctx context.Context, id ID) (*Form, error)
	Invalidate(id ID)
}

// Hasher transforms a raw password answer into its stored form.
type Hasher interface {
	Hash(plain string) (string, error)
}

// Service implements the form use cases.  Safe for concurrent use.
type Service struct {
	store     Store
	cache     Cache
	hasher    Hasher
	maxFields int
	now       func() time.Time
	newID     func() string
}

// Option customises a Service.
type Option func(*Service)

// WithCache routes Get (and therefore Submit) through c.
func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

// WithHasher replaces the default bcrypt hasher.
func WithHasher(h Hasher) Option { return func(s *Service) { s.hasher = h } }

// WithMaxFields overrides DefaultMaxFields.  Zero disables the cap.
func WithMaxFields(n int) Option { return func(s *Service) { s.maxFields = n } }

// WithClock overrides time.Now, used by tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService wires a Service around store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		hasher:    BcryptHasher{},
		maxFields: DefaultMaxFields,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns every form owned by owner, possibly none.
func (s *Service) List(ctx context.Context, owner string) ([]Form, error) {
	if owner == "" {
		return nil, ErrForbidden
	}
	forms, err := s.store.ListForms(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	if forms == nil {
		forms = []Form{}
	}
	return forms, nil
}

// Get returns a form by id regardless of owner.  Respondents rely on this.
func (s *Service) Get(ctx context.Context, id ID) (*Form, error) {
	if s.cache != nil {
		return s.cache.Get(ctx, id)
	}
	return s.store.GetForm(ctx, id)
}

// Create validates d and stores it as a new form owned by owner.
func (s *Service) Create(ctx context.Context, owner string, d Draft) (*Form, error) {
	if owner == "" {
		return nil, ErrForbidden
	}
	if err := validateDraft(&d, true, s.maxFields); err != nil {
		return nil, err
	}

	switch _, err := s.store.GetForm(ctx, d.ID); {
	case err == nil:
		return nil, ErrConflict
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("create form %s: %w", d.ID, err)
	}

	f := &Form{
		ID:        d.ID,
		Name:      d.Name,
		Fields:    Fields(d.Fields),
		CreatedBy: owner,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateForm(ctx, f); err != nil {
		return nil, fmt.Errorf("create form %s: %w", d.ID, err)
	}

	metrics.FormsCreatedTotal.Inc()
	logger.FromContext(ctx).Infow("form created",
		"form", f.ID, "owner", owner, "fields", len(f.Fields))
	return f, nil
}

// Update replaces the name and fields of a form owned by owner.  The draft
// id is ignored; the path id wins.
func (s *Service) Update(ctx context.Context, owner string, id ID, d Draft) (*Form, error) {
	if owner == "" {
		return nil, ErrForbidden
	}
	if err := validateDraft(&d, false, s.maxFields); err != nil {
		return nil, err
	}

	f, err := s.store.UpdateForm(ctx, owner, id, d.Name, Fields(d.Fields))
	if err != nil {
		return nil, wrapUnlessNotFound("update form", id, err)
	}
	s.invalidate(id)

	metrics.FormsUpdatedTotal.Inc()
	logger.FromContext(ctx).Infow("form updated", "form", id, "owner", owner)
	return f, nil
}

// Delete removes a form owned by owner and returns the deleted record.
// Responses already collected are kept.
func (s *Service) Delete(ctx context.Context, owner string, id ID) (*Form, error) {
	if owner == "" {
		return nil, ErrForbidden
	}
	f, err := s.store.DeleteForm(ctx, owner, id)
	if err != nil {
		return nil, wrapUnlessNotFound("delete form", id, err)
	}
	s.invalidate(id)

	metrics.FormsDeletedTotal.Inc()
	logger.FromContext(ctx).Infow("form deleted", "form", id, "owner", owner)
	return f, nil
}

func (s *Service) invalidate(id ID) {
	if s.cache != nil {
		s.cache.Invalidate(id)
	}
}

func wrapUnlessNotFound(op string, id ID, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s %s: %w", op, id, err)
}
