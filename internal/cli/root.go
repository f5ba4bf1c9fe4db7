// Package cli implements the order-assistant command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/order-assistant/internal/common"
)

type rootOptions struct {
	configPath string
	debug      bool

	cfg    *common.Config
	logger *slog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "order-assistant",
		Short:         "Import purchase order workbooks and announce them during assembly",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := common.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = newLogger(cmd.ErrOrStderr(), cfg.Log, opts.debug)
			slog.SetDefault(opts.logger)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newServeCommand(opts),
		newImportCommand(opts),
		newAnnounceCommand(opts),
		newExportCommand(opts),
		newFiltersCommand(opts),
		newDBCommand(opts),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", common.UserMessage(err))
		if common.IsValidation(err) {
			return 2
		}
		return 1
	}
	return 0
}

// withApp wires the application for the duration of fn.
func (o *rootOptions) withApp(ctx context.Context, prerender bool, fn func(*app) error) error {
	a, err := newApp(ctx, o.cfg, o.logger, prerender)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		a.Close(shutdownCtx)
	}()
	return fn(a)
}

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewAppError("INVALID_ARGUMENT", fmt.Sprintf("%s must be a positive integer: %q", name, s), common.ErrInvalidInput)
	}
	return id, nil
}
