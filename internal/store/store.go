// internal/store/store.go
//
// sqlx implementation of form.Store.
//
// Context
// -------
// All queries use `?` placeholders, which both go-sql-driver/mysql and
// modernc.org/sqlite accept, so one Store serves either driver.  Owner
// scoping is enforced in SQL: an update or delete that names someone
// else's form matches no row and surfaces as form.ErrNotFound, exactly like
// a missing id.
//
// A duplicate form id is reported as form.ErrConflict so a create that loses
// the race against a concurrent insert still gets a 409.
//
// Update and delete run inside a transaction so the returned record is the
// row that was actually changed.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/yanizio/formdesk/internal/form"
)

const formColumns = `form_id, form_name, fields, created_by, created_at`

// Store persists forms and responses.  Safe for concurrent use.
type Store struct {
	db *sqlx.DB
}

// New wraps db.
func New(db *sqlx.DB) *Store { return &Store{db: db} }

// Ping checks connectivity; used by the health component.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// ListForms returns every form owned by owner in creation order.
func (s *Store) ListForms(ctx context.Context, owner string) ([]form.Form, error) {
	var out []form.Form
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+formColumns+` FROM forms WHERE created_by = ? ORDER BY created_at, form_id`,
		owner)
	if err != nil {
		return nil, fmt.Errorf("select forms: %w", err)
	}
	return out, nil
}

// GetForm loads one form by id, regardless of owner.
func (s *Store) GetForm(ctx context.Context, id form.ID) (*form.Form, error) {
	return getForm(ctx, s.db, `SELECT `+formColumns+` FROM forms WHERE form_id = ?`, id)
}

// CreateForm inserts f.
func (s *Store) CreateForm(ctx context.Context, f *form.Form) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO forms (`+formColumns+`)
		 VALUES (:form_id, :form_name, :fields, :created_by, :created_at)`, f)
	if isDuplicate(err) {
		return fmt.Errorf("insert form %s: %w", f.ID, form.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	return nil
}

// isDuplicate reports a primary key or unique violation from either driver.
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062 // ER_DUP_ENTRY
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

// UpdateForm replaces name and fields of a form owned by owner.
func (s *Store) UpdateForm(ctx context.Context, owner string, id form.ID, name string, fields form.Fields) (*form.Form, error) {
	var out *form.Form
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		f, err := getForm(ctx, tx,
			`SELECT `+formColumns+` FROM forms WHERE form_id = ? AND created_by = ?`, id, owner)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE forms SET form_name = ?, fields = ? WHERE form_id = ? AND created_by = ?`,
			name, fields, id, owner); err != nil {
			return fmt.Errorf("update form: %w", err)
		}
		f.Name, f.Fields = name, fields
		out = f
		return nil
	})
	return out, err
}

// DeleteForm removes a form owned by owner and returns the deleted row.
func (s *Store) DeleteForm(ctx context.Context, owner string, id form.ID) (*form.Form, error) {
	var out *form.Form
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		f, err := getForm(ctx, tx,
			`SELECT `+formColumns+` FROM forms WHERE form_id = ? AND created_by = ?`, id, owner)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM forms WHERE form_id = ? AND created_by = ?`, id, owner); err != nil {
			return fmt.Errorf("delete form: %w", err)
		}
		out = f
		return nil
	})
	return out, err
}

// SaveResponse inserts r.
func (s *Store) SaveResponse(ctx context.Context, r *form.Response) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO form_responses (id, form_id, responses, submitted_by, submitted_at)
		 VALUES (:id, :form_id, :responses, :submitted_by, :submitted_at)`, r)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// ListResponses returns the stored responses for one form, oldest first.
func (s *Store) ListResponses(ctx context.Context, id form.ID) ([]form.Response, error) {
	var out []form.Response
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, form_id, responses, submitted_by, submitted_at
		 FROM form_responses WHERE form_id = ? ORDER BY submitted_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("select responses: %w", err)
	}
	return out, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func getForm(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*form.Form, error) {
	var f form.Form
	if err := sqlx.GetContext(ctx, q, &f, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, form.ErrNotFound
		}
		return nil, fmt.Errorf("select form: %w", err)
	}
	return &f, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
