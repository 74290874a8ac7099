package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanizio/formdesk/internal/auth"
	"github.com/yanizio/formdesk/internal/config"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

// tokenCmd mints a bearer token signed with the configured secret.  Useful
// for local testing; production tokens come from the login service.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed bearer token for an email",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUser == "" {
			return errors.New("--email is required")
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}
		v := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Leeway)
		tok, err := v.Issue(auth.Identity{ID: tokenUser, Email: tokenUser}, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "email", "", "Identity email")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
