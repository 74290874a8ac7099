// cmd/formctl/main.go
//
// formctl – operator CLI for Formdesk.
//
// Context
//   Offline commands (validate, migrate, import, responses, token) read the
//   same conf/global.yaml as cmd/web and talk to the database directly.
//   Online commands (publish, submit) go through the HTTP API with a bearer
//   token, driving the same builder and fill-in state machines a browser
//   front end would.
//
//------------------------------------------------------------------------------

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/formdesk/internal/logger"
)

var (
	// Global flags
	logLevel string
	timeout  time.Duration

	log *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:           "formctl",
	Short:         "Manage Formdesk forms, schema, and responses",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.Console(logLevel)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
}

// commandContext bounds a command by --timeout and SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() { cancel(); stop() }
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "formctl:", err)
		os.Exit(1)
	}
}
