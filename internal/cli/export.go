package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <order-id>",
		Short: "Write the assembly sheet of an order as XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order-id", args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				data, name, err := a.export.ExportOrderXLSX(cmd.Context(), id)
				if err != nil {
					return err
				}
				if output == "" {
					output = name
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default assembly_order_<number>.xlsx)")
	return cmd
}
