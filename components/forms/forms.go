// components/forms/forms.go
//
// Formdesk forms component – authoring and response routes.
//
// Context
//   Thin HTTP boundary over form.Service.  Handlers decode JSON, pull the
//   caller from auth.Owner, call the service, and map its error taxonomy
//   onto status codes.  Management routes answer `{message, ...}`; the
//   response route answers `{error: ...}` because existing clients read
//   that key.
//
// Routes
//   GET    /form/              list the caller's forms
//   POST   /form/create        create (body: [{FormName, formId}, ...fields])
//   PUT    /form/edit/{id}     replace name and fields
//   DELETE /form/delete/{id}   delete
//   POST   /form/response/{id} submit answers (body: {formId, responses})
//
//------------------------------------------------------------------------------

package forms

import (
	"errors"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/formdesk/internal/component"
	"github.com/yanizio/formdesk/internal/form"
)

// maxBody caps request bodies.  Twenty fields with long titles stay far
// below it.
const maxBody = 1 << 20

// Compile-time assertions.
var (
	_ component.Component   = (*Component)(nil)
	_ component.Initializer = (*Component)(nil)
)

// Component serves the form routes.
type Component struct {
	svc *form.Service
}

// New returns a Component bound to svc.  Used by tests; production wiring
// goes through Init.
func New(svc *form.Service) *Component { return &Component{svc: svc} }

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "forms" }

// Init picks up the shared form service.
func (c *Component) Init(deps component.Deps) error {
	c.svc = deps.Forms()
	if c.svc == nil {
		return errors.New("forms: no form service")
	}
	return nil
}

// Routes registers the /form tree.
func (c *Component) Routes(r chi.Router) {
	r.Route("/form", func(r chi.Router) {
		r.Get("/", c.handleList)
		r.Post("/create", c.handleCreate)
		r.Put("/edit/{id}", c.handleUpdate)
		r.Delete("/delete/{id}", c.handleDelete)
		r.Post("/response/{id}", c.handleSubmit)
	})
}

// Register component at program start.
func init() { component.Register(&Component{}) }
