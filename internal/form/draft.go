// internal/form/draft.go
//
// Formdesk - forms subsystem: authoring payloads.
//
// Context
//   The builder sends a form as one JSON array: a header object followed by
//   the field definitions,
//
//       [{"FormName": "Signup", "formId": 1712345678901},
//        {"id": 1, "type": "email", "title": "Email"}, ...]
//
//   Draft is the decoded shape.  It implements json.Marshaler and
//   json.Unmarshaler so the API client and the HTTP handler share one codec.
//
// Workflow
//   •  UnmarshalJSON reports shape problems as *InputError.
//   •  validateDraft applies struct rules via go-playground/validator and
//      renders one message per problem.
//
//------------------------------------------------------------------------------

package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/formdesk/internal/field"
)

// DefaultMaxFields caps the number of inputs per form.
const DefaultMaxFields = 20

// Draft is a form as submitted by its author.
type Draft struct {
	Name   string      `validate:"required,notblank"`
	ID     ID          // required on create, ignored on update
	Fields []field.Def `validate:"required,min=1,dive"`
}

type draftHeader struct {
	FormName string `json:"FormName"`
	FormID   ID     `json:"formId"`
}

// MarshalJSON emits the header-then-fields array.
func (d Draft) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(d.Fields)+1)
	out = append(out, draftHeader{FormName: d.Name, FormID: d.ID})
	for _, f := range d.Fields {
		out = append(out, f)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the header-then-fields array.
func (d *Draft) UnmarshalJSON(b []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil || len(parts) == 0 {
		return badRequest("Invalid form data provided.")
	}

	var hdr draftHeader
	if err := json.Unmarshal(parts[0], &hdr); err != nil {
		return badRequest("Invalid form header.")
	}

	fields := make([]field.Def, 0, len(parts)-1)
	for i, raw := range parts[1:] {
		var f field.Def
		if err := json.Unmarshal(raw, &f); err != nil {
			if errors.Is(err, field.ErrUnknownType) {
				return badRequest(fmt.Sprintf("Field %d has an unsupported type.", i+1))
			}
			return badRequest(fmt.Sprintf("Field %d is malformed.", i+1))
		}
		fields = append(fields, f)
	}

	*d = Draft{Name: strings.TrimSpace(hdr.FormName), ID: hdr.FormID, Fields: fields}
	return nil
}

// -----------------------------------------------------------------------------
// Validation
// -----------------------------------------------------------------------------

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = val.RegisterValidation("field_type", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(field.Type)
		return ok && t.Valid()
	})
	return val
}

var fieldIndex = regexp.MustCompile(`Fields\[(\d+)\]`)

// validateDraft checks d and returns an *InputError describing every problem.
// requireID is true on create, where the caller chooses the form id.
func validateDraft(d *Draft, requireID bool, maxFields int) error {
	var msgs []string

	if requireID && d.ID == 0 {
		msgs = append(msgs, "formId is required.")
	}
	if maxFields > 0 && len(d.Fields) > maxFields {
		msgs = append(msgs, fmt.Sprintf("A form can have at most %d fields.", maxFields))
	}

	if err := v.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
	}

	if len(msgs) == 0 {
		return nil
	}
	return badRequest(strings.Join(msgs, " "))
}

// describe turns one validator failure into a sentence.
func describe(fe validator.FieldError) string {
	idx := -1
	if m := fieldIndex.FindStringSubmatch(fe.Namespace()); m != nil {
		idx, _ = strconv.Atoi(m[1])
	}

	switch {
	case fe.StructField() == "Name":
		return "FormName is required."
	case fe.StructField() == "Fields" && idx < 0:
		return "At least one field is required."
	case fe.StructField() == "Title":
		return fmt.Sprintf("Field %d needs a title.", idx+1)
	case fe.StructField() == "Type":
		return fmt.Sprintf("Field %d has an unsupported type.", idx+1)
	default:
		return fmt.Sprintf("Invalid value for %s.", fe.Field())
	}
}
