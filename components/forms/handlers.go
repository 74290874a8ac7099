// components/forms/handlers.go
//
// Handlers and the error-to-status mapping.
//
//------------------------------------------------------------------------------

package forms

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/formdesk/internal/auth"
	"github.com/yanizio/formdesk/internal/form"
	"github.com/yanizio/formdesk/internal/logger"
)

const (
	msgNoIdentity   = "User email is required."
	msgNotOwned     = "Form not found or access denied."
	msgConflict     = "A form with this formId already exists."
	msgFormNotFound = "Form not found."
	msgIDMismatch   = "formId does not match the request path."
	msgInternal     = "Internal server error."
)

/*──────────────────────────── management ───────────────────────────────────*/

func (c *Component) handleList(w http.ResponseWriter, r *http.Request) {
	forms, err := c.svc.List(r.Context(), auth.Owner(r.Context()))
	if err != nil {
		c.fail(w, r, err, "Failed to retrieve forms")
		return
	}
	writeJSON(w, http.StatusOK, forms)
}

func (c *Component) handleCreate(w http.ResponseWriter, r *http.Request) {
	owner := auth.Owner(r.Context())
	if owner == "" {
		writeJSON(w, http.StatusForbidden, message(msgNoIdentity))
		return
	}

	var d form.Draft
	if err := decode(r, &d); err != nil {
		c.fail(w, r, err, "Failed to save form")
		return
	}

	f, err := c.svc.Create(r.Context(), owner, d)
	if err != nil {
		c.fail(w, r, err, "Failed to save form")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Form saved successfully", "form": f})
}

func (c *Component) handleUpdate(w http.ResponseWriter, r *http.Request) {
	owner := auth.Owner(r.Context())
	if owner == "" {
		writeJSON(w, http.StatusForbidden, message(msgNoIdentity))
		return
	}
	id, err := form.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, message(msgNotOwned))
		return
	}

	var d form.Draft
	if err := decode(r, &d); err != nil {
		c.fail(w, r, err, "Failed to update form")
		return
	}

	f, err := c.svc.Update(r.Context(), owner, id, d)
	if err != nil {
		c.fail(w, r, err, "Failed to update form")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Form updated successfully", "form": f})
}

func (c *Component) handleDelete(w http.ResponseWriter, r *http.Request) {
	owner := auth.Owner(r.Context())
	if owner == "" {
		writeJSON(w, http.StatusForbidden, message(msgNoIdentity))
		return
	}
	id, err := form.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, message(msgNotOwned))
		return
	}

	f, err := c.svc.Delete(r.Context(), owner, id)
	if err != nil {
		c.fail(w, r, err, "Failed to delete form")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Form deleted successfully", "form": f})
}

// fail maps a service error onto a `{message}` reply.
func (c *Component) fail(w http.ResponseWriter, r *http.Request, err error, internal string) {
	switch {
	case errors.Is(err, form.ErrForbidden):
		writeJSON(w, http.StatusForbidden, message(msgNoIdentity))
	case errors.Is(err, form.ErrNotFound):
		writeJSON(w, http.StatusNotFound, message(msgNotOwned))
	case errors.Is(err, form.ErrConflict):
		writeJSON(w, http.StatusConflict, message(msgConflict))
	default:
		if msgs, ok := form.Messages(err); ok {
			writeJSON(w, http.StatusBadRequest, message(joinMessages(msgs)))
			return
		}
		logger.FromContext(r.Context()).Errorw(internal, "err", err)
		writeJSON(w, http.StatusInternalServerError, message(internal))
	}
}

/*──────────────────────────── responses ────────────────────────────────────*/

func (c *Component) handleSubmit(w http.ResponseWriter, r *http.Request) {
	owner := auth.Owner(r.Context())
	if owner == "" {
		writeJSON(w, http.StatusForbidden, errorBody(msgNoIdentity))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("Request body too large."))
		return
	}
	req, err := form.DecodeSubmission(body)
	if err != nil {
		c.failSubmit(w, r, err)
		return
	}
	if req.FormID != 0 && chi.URLParam(r, "id") != req.FormID.String() {
		writeJSON(w, http.StatusBadRequest, errorBody(msgIDMismatch))
		return
	}

	resp, err := c.svc.Submit(r.Context(), req, owner)
	if err != nil {
		c.failSubmit(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Form responses saved successfully.",
		"data":    resp,
	})
}

// failSubmit maps a submission error onto an `{error}` reply.  Validation
// failures carry the full list; everything else a single string.
func (c *Component) failSubmit(w http.ResponseWriter, r *http.Request, err error) {
	var ve *form.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Messages})
	case errors.Is(err, form.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody(msgNoIdentity))
	case errors.Is(err, form.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(msgFormNotFound))
	default:
		if msgs, ok := form.Messages(err); ok {
			writeJSON(w, http.StatusBadRequest, errorBody(joinMessages(msgs)))
			return
		}
		logger.FromContext(r.Context()).Errorw("saving form responses failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody(msgInternal))
	}
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func decode(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return err
	}
	if len(body) > maxBody {
		return &form.InputError{Message: "Request body too large."}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var ie *form.InputError
		if errors.As(err, &ie) {
			return ie
		}
		return &form.InputError{Message: "Invalid form data provided."}
	}
	return nil
}

func message(s string) map[string]string   { return map[string]string{"message": s} }
func errorBody(s string) map[string]string { return map[string]string{"error": s} }

func joinMessages(msgs []string) string { return strings.Join(msgs, " ") }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
