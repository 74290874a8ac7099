// internal/form/model.go
//
// Formdesk - forms subsystem: records.
//
// Context
//   A Form is an owner's ordered list of field definitions.  A Response is
//   one respondent's answer set against a form, keyed by field type.  Both
//   are persisted by a Store (see service.go); the list-valued columns are
//   kept as JSON text so the schema stays identical on MySQL and SQLite.
//
// Notes
//   •  Form ids are caller supplied (historically a millisecond timestamp)
//      and arrive either as JSON numbers or numeric strings.
//   •  Response answers for password fields hold bcrypt hashes, never the
//      raw value.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/yanizio/formdesk/internal/field"
)

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

// ID identifies a form.  Zero means "absent".
type ID int64

// ParseID converts a path segment into an ID.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse form id %q: %w", s, err)
	}
	return ID(n), nil
}

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// UnmarshalJSON accepts 1712345678901, "1712345678901", or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		b = []byte(s)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		// Numbers like 1.7e12 are still integral ids.
		f, ferr := strconv.ParseFloat(string(b), 64)
		if ferr != nil || f != float64(int64(f)) {
			return fmt.Errorf("form id %s is not an integer", b)
		}
		n = int64(f)
	}
	*id = ID(n)
	return nil
}

// -----------------------------------------------------------------------------
// Form
// -----------------------------------------------------------------------------

// Form is a stored form definition.
type Form struct {
	ID        ID        `db:"form_id"    json:"formId"`
	Name      string    `db:"form_name"  json:"formName"`
	Fields    Fields    `db:"fields"     json:"fields"`
	CreatedBy string    `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Fields is the ordered field list, stored as a JSON column.
type Fields []field.Def

// Value implements driver.Valuer.
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		f = Fields{}
	}
	b, err := json.Marshal([]field.Def(f))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (f *Fields) Scan(src any) error {
	return scanJSON(src, f)
}

// -----------------------------------------------------------------------------
// Response
// -----------------------------------------------------------------------------

// Response is one stored submission.  It is never updated after insert.
type Response struct {
	ID          string    `db:"id"           json:"id"`
	FormID      ID        `db:"form_id"      json:"formId"`
	Answers     Answers   `db:"responses"    json:"responses"`
	SubmittedBy string    `db:"submitted_by" json:"submittedBy"`
	SubmittedAt time.Time `db:"submitted_at" json:"submittedAt"`
}

// Answers maps a field type name to the submitted (or hashed) value.
type Answers map[string]string

// Value implements driver.Valuer.
func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		a = Answers{}
	}
	b, err := json.Marshal(map[string]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (a *Answers) Scan(src any) error {
	return scanJSON(src, a)
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("scan json column: unsupported source %T", src)
	}
}
