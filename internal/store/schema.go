// internal/store/schema.go
//
// DDL for the two Formdesk tables.
//
// Context
// -------
// Column types are the common subset of MySQL and SQLite, so the same
// statements run on both.  Secondary indexes differ: MySQL declares them
// inline, SQLite needs a separate CREATE INDEX.  List-valued columns (the
// field definitions and the answer map) are JSON text.
//
// Deleting a form leaves its responses in place, so form_responses carries
// no foreign key.

package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = map[string][]string{
	"mysql": {
		`CREATE TABLE IF NOT EXISTS forms (
			form_id    BIGINT       NOT NULL PRIMARY KEY,
			form_name  VARCHAR(255) NOT NULL,
			fields     TEXT         NOT NULL,
			created_by VARCHAR(255) NOT NULL,
			created_at TIMESTAMP    NOT NULL,
			INDEX idx_forms_created_by (created_by)
		)`,
		`CREATE TABLE IF NOT EXISTS form_responses (
			id           CHAR(36)     NOT NULL PRIMARY KEY,
			form_id      BIGINT       NOT NULL,
			responses    TEXT         NOT NULL,
			submitted_by VARCHAR(255) NOT NULL,
			submitted_at TIMESTAMP    NOT NULL,
			INDEX idx_form_responses_form_id (form_id)
		)`,
	},
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS forms (
			form_id    BIGINT       NOT NULL PRIMARY KEY,
			form_name  VARCHAR(255) NOT NULL,
			fields     TEXT         NOT NULL,
			created_by VARCHAR(255) NOT NULL,
			created_at TIMESTAMP    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forms_created_by ON forms (created_by)`,
		`CREATE TABLE IF NOT EXISTS form_responses (
			id           CHAR(36)     NOT NULL PRIMARY KEY,
			form_id      BIGINT       NOT NULL,
			responses    TEXT         NOT NULL,
			submitted_by VARCHAR(255) NOT NULL,
			submitted_at TIMESTAMP    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_form_responses_form_id ON form_responses (form_id)`,
	},
}

// Migrate creates the tables when missing.  It is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts, ok := schema[db.DriverName()]
	if !ok {
		return fmt.Errorf("migrate: no schema for driver %q", db.DriverName())
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
