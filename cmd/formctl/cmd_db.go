package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yanizio/formdesk/internal/config"
	"github.com/yanizio/formdesk/internal/database"
	"github.com/yanizio/formdesk/internal/form"
	"github.com/yanizio/formdesk/internal/store"
)

var outputFormat string

// migrateCmd applies the schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the forms and responses tables if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.Migrate(ctx, db); err != nil {
			return err
		}
		log.Infow("schema applied", "driver", db.DriverName())
		return nil
	},
}

// responsesCmd dumps stored responses for one form.
var responsesCmd = &cobra.Command{
	Use:   "responses <formId>",
	Short: "Print the stored responses of a form",
	Long: `Print every response stored for a form, oldest first.

Password answers are bcrypt hashes; the raw value is never stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := form.ParseID(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		rs, err := store.New(db).ListResponses(ctx, id)
		if err != nil {
			return err
		}
		log.Debugw("responses loaded", "form_id", id, "count", len(rs))
		return printOut(rs)
	},
}

func init() {
	responsesCmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "json or yaml")
	rootCmd.AddCommand(migrateCmd, responsesCmd)
}

// openDB connects with the settings from conf/global.yaml.
func openDB(ctx context.Context) (*sqlx.DB, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	return database.Open(ctx, database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		Password:        cfg.Database.Password,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
}

func printOut(v any) error {
	switch outputFormat {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json", "":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
