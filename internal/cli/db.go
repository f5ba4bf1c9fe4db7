package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDBCommand(opts *rootOptions) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	check := &cobra.Command{
		Use:   "check",
		Short: "Create missing tables and ping the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				if err := a.db.HealthCheck(cmd.Context(), timeout); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "DB health: FAIL (%v)\n", err)
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "DB health: OK (%s)\n", a.db.Dialect())
				return nil
			})
		},
	}
	check.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "ping timeout")
	cmd.AddCommand(check)
	return cmd
}
