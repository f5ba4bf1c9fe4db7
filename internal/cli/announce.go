package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

func newAnnounceCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "announce",
		Short: "Render announcements to audio files",
	}

	printArtifact := func(cmd *cobra.Command, art *tts.Artifact) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d bytes\n", art.Path, art.Provider, art.Size)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "order <order-id>",
		Short: "Render the order number announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order-id", args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				art, err := a.assembly.AnnounceOrder(cmd.Context(), id)
				if err != nil {
					return err
				}
				printArtifact(cmd, art)
				return nil
			})
		},
	}, &cobra.Command{
		Use:   "item <item-id>",
		Short: "Render the announcement of one line item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item-id", args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				art, err := a.assembly.AnnounceItem(cmd.Context(), id)
				if err != nil {
					return err
				}
				printArtifact(cmd, art)
				return nil
			})
		},
	})
	return cmd
}
