package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/order-assistant/internal/common"
	"github.com/joseph-ayodele/order-assistant/internal/ingest"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var (
		includeHidden bool
		prerender     bool
	)
	cmd := &cobra.Command{
		Use:   "import <file|dir>",
		Short: "Import one order workbook or every workbook under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			st, err := os.Stat(path)
			if err != nil {
				return common.NewAppError("NOT_FOUND", fmt.Sprintf("path not found: %s", path), common.ErrNotFound)
			}
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				var (
					results []ingest.FileResult
					stats   *ingest.DirStats
				)
				if st.IsDir() {
					res, s, err := a.ingestor.ImportDirectory(cmd.Context(), path, !includeHidden)
					if err != nil {
						return err
					}
					results, stats = res, &s
				} else {
					results = []ingest.FileResult{a.ingestor.ImportPath(cmd.Context(), path)}
				}

				if prerender {
					for i, r := range results {
						if r.Err != "" {
							continue
						}
						if _, err := a.assembly.Prerender(cmd.Context(), r.OrderID, false); err != nil {
							results[i].Err = "prerender: " + common.UserMessage(err)
						}
					}
				}
				printResults(cmd.OutOrStdout(), results)
				if stats != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d matched=%d imported=%d duplicates=%d failed=%d\n",
						stats.Scanned, stats.Matched, stats.Succeeded, stats.Duplicates, stats.Failed)
				}

				if !st.IsDir() && results[0].Err != "" {
					return fmt.Errorf("import %s: %s", path, results[0].Err)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "also import hidden files and directories")
	cmd.Flags().BoolVar(&prerender, "prerender", false, "render the announcements of each imported order")
	return cmd
}

func printResults(w io.Writer, results []ingest.FileResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tORDER_ID\tNUMBER\tITEMS\tRESULT")
	for _, r := range results {
		outcome := "ok"
		switch {
		case r.Duplicate:
			outcome = "duplicate: " + r.Err
		case r.Err != "":
			outcome = "error: " + r.Err
		}
		id := ""
		if r.OrderID > 0 {
			id = fmt.Sprint(r.OrderID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.Path, id, r.OrderNumber, r.Items, outcome)
	}
	_ = tw.Flush()
}
