package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/order-assistant/internal/metrics"
	"github.com/joseph-ayodele/order-assistant/internal/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC API, the audio/metrics HTTP server and the inbox watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			return opts.withApp(cmd.Context(), cfg.Speech.Prerender, func(a *app) error {
				if err := a.db.HealthCheck(cmd.Context(), 5*time.Second); err != nil {
					a.logger.Error("failed to ping database", "error", err)
					return err
				}

				reg := metrics.NewRegistry()
				health := func(ctx context.Context) error { return a.db.HealthCheck(ctx, 2*time.Second) }
				srv := server.New(server.Config{
					GRPCAddr: cfg.Server.GRPCAddr,
					HTTPAddr: cfg.Server.HTTPAddr,
					AudioDir: cfg.Storage.AudioDir,
				},
					server.NewOrderAssistant(a.orders, a.assembly, a.export, a.logger),
					server.NewHTTPHandler(cfg.Storage.AudioDir, reg, health, a.logger),
					a.logger,
				)

				g, ctx := errgroup.WithContext(cmd.Context())
				g.Go(func() error { return srv.Run(ctx) })
				if cfg.Storage.InboxDir != "" {
					g.Go(func() error {
						err := a.ingestor.WatchInbox(ctx, cfg.Storage.InboxDir, debounce, nil)
						if ctx.Err() != nil {
							return nil
						}
						return err
					})
				}
				a.logger.Info("order-assistant started",
					"grpc_addr", cfg.Server.GRPCAddr,
					"http_addr", cfg.Server.HTTPAddr,
					"inbox_dir", cfg.Storage.InboxDir,
					"providers", a.speech.Providers(),
				)
				return g.Wait()
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "inbox-debounce", 2*time.Second, "wait for writes to settle before importing inbox files")
	return cmd
}
