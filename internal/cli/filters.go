package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFiltersCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage the words that suppress item announcements",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List filter words, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				words, err := a.assembly.ListFilters(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tWORD\tADDED")
				for _, w := range words {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", w.ID, w.Word, w.CreatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <word>...",
		Short: "Add a filter word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				fw, err := a.assembly.AddFilter(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", fw.ID, fw.Word)
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a filter word",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				return a.assembly.DeleteFilter(cmd.Context(), id)
			})
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}
