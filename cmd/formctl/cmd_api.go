package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanizio/formdesk/internal/auth"
	"github.com/yanizio/formdesk/internal/builder"
	"github.com/yanizio/formdesk/internal/client"
	"github.com/yanizio/formdesk/internal/fill"
	"github.com/yanizio/formdesk/internal/form"
)

var (
	serverURL string
	apiToken  string
	editID    int64
)

// publishCmd replays a YAML definition through the builder and saves it over
// the API, so the server applies the same checks as an interactive author.
var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Create (or with --edit, update) a form over the HTTP API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := form.LoadDefinition(args[0])
		if err != nil {
			return err
		}
		api, err := apiClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		d, err := draftFrom(ctx, api, def)
		if err != nil {
			return err
		}
		f, err := d.Save(ctx, api)
		if err != nil {
			return withFailure(d.Failure(), err)
		}
		log.Infow("form published", "form_id", f.ID, "name", f.Name, "fields", len(f.Fields))
		return nil
	},
}

// submitCmd fills one of the caller's forms from key=value pairs.
var submitCmd = &cobra.Command{
	Use:   "submit <formId> <type=value>...",
	Short: "Submit a response to one of your forms over the HTTP API",
	Long: `Submit a response to a form owned by the token's identity.

Answers are keyed by field type, for example:

  formctl submit 1712345678901 email=ada@example.com number=42`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		api, err := apiClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		f, err := findForm(ctx, api, id)
		if err != nil {
			return err
		}

		s := fill.New(f)
		for _, kv := range args[1:] {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("answer %q must look like type=value", kv)
			}
			if err := s.Edit(k, v); err != nil {
				return err
			}
		}
		for _, k := range s.Keys() {
			if msg := s.Error(k); msg != "" {
				log.Warnw("invalid answer", "field", k, "hint", msg)
			}
		}

		if err := s.Save(ctx, api); err != nil {
			if errors.Is(err, fill.ErrInvalid) {
				return fmt.Errorf("form %d has missing or invalid answers", id)
			}
			return withFailure(s.Failure(), err)
		}
		log.Infow("response stored", "form_id", id, "response_id", s.Saved().ID)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{publishCmd, submitCmd} {
		c.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "Formdesk base URL")
		c.Flags().StringVar(&apiToken, "token", "", "Bearer token (default $FORMDESK_TOKEN)")
	}
	publishCmd.Flags().Int64Var(&editID, "edit", 0, "Update this existing form id instead of creating")
	rootCmd.AddCommand(publishCmd, submitCmd)
}

func apiClient() (*client.Client, error) {
	tok := apiToken
	if tok == "" {
		tok = os.Getenv("FORMDESK_TOKEN")
	}
	return client.New(serverURL, auth.NewSession(tok), client.WithUserAgent("formctl/1"))
}

func findForm(ctx context.Context, api *client.Client, id form.ID) (*form.Form, error) {
	list, err := api.ListForms(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("form %d not found among your forms", id)
}

// draftFrom walks def through the builder lifecycle: add, title,
// placeholder, confirm.
func draftFrom(ctx context.Context, api *client.Client, def *form.Definition) (*builder.Draft, error) {
	var d *builder.Draft
	if editID != 0 {
		f, err := findForm(ctx, api, form.ID(editID))
		if err != nil {
			return nil, err
		}
		d = builder.FromForm(f)
		for _, fd := range d.Fields() {
			if err := d.Remove(fd.ID); err != nil {
				return nil, err
			}
		}
	} else {
		d = builder.New(builder.WithFormID(def.ID))
	}
	d.SetName(def.Name)

	for _, fd := range def.Fields {
		id, err := d.AddField(fd.Type)
		if err != nil {
			return nil, err
		}
		_ = d.SetTitle(id, fd.Title)
		_ = d.SetPlaceholder(id, fd.Placeholder)
		if err := d.Confirm(id); err != nil {
			return nil, err
		}
		if f, _ := d.Field(id); f.TitleError {
			return nil, fmt.Errorf("field %q needs a title", fd.Type)
		}
	}
	return d, nil
}

func withFailure(msg string, err error) error {
	if msg == "" || msg == err.Error() {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
