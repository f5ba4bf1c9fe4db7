package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/order-assistant/internal/announce"
	"github.com/joseph-ayodele/order-assistant/internal/assembly"
	"github.com/joseph-ayodele/order-assistant/internal/async"
	"github.com/joseph-ayodele/order-assistant/internal/common"
	"github.com/joseph-ayodele/order-assistant/internal/export"
	"github.com/joseph-ayodele/order-assistant/internal/ingest"
	"github.com/joseph-ayodele/order-assistant/internal/orders"
	"github.com/joseph-ayodele/order-assistant/internal/repository"
	"github.com/joseph-ayodele/order-assistant/internal/spreadsheet"
	"github.com/joseph-ayodele/order-assistant/internal/tts"
	"github.com/joseph-ayodele/order-assistant/internal/tts/google"
	"github.com/joseph-ayodele/order-assistant/internal/tts/yandex"
)

// app is the wired object graph shared by the commands.
type app struct {
	cfg    *common.Config
	logger *slog.Logger

	db       *repository.DB
	speech   *tts.Orchestrator
	orders   *orders.Service
	assembly *assembly.Service
	export   *export.Service
	ingestor *ingest.Ingestor
	queue    *async.PrerenderQueue // nil unless prerendering is on
}

func newApp(ctx context.Context, cfg *common.Config, logger *slog.Logger, prerender bool) (*app, error) {
	db, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	orderRepo := repository.NewOrderRepository(db, logger)
	filterRepo := repository.NewFilterWordRepository(db, logger)

	speech := tts.NewOrchestrator(speechProviders(cfg.Speech, logger), logger)
	asm := assembly.NewService(orderRepo, filterRepo,
		announce.NewAnnouncer(speech, cfg.Storage.AudioDir),
		assembly.WithConcurrency(cfg.Speech.Workers),
		assembly.WithLogger(logger),
	)

	a := &app{cfg: cfg, logger: logger, db: db, speech: speech, assembly: asm}
	var queue async.Queue
	if prerender {
		a.queue = async.NewPrerenderQueue(asm, logger,
			async.WithWorkers(2),
			async.WithQueueSize(256),
			async.WithJobTimeout(5*time.Minute),
		)
		queue = a.queue
	}

	extractor := spreadsheet.NewExtractor(spreadsheet.WithLogger(logger))
	a.orders = orders.NewService(orderRepo, extractor, queue, cfg.Storage.UploadDir, logger)
	a.export = export.NewService(asm, logger)
	a.ingestor = ingest.NewIngestor(a.orders, logger)

	logger.Debug("app wired", "providers", speech.Providers(), "prerender", prerender)
	return a, nil
}

// speechProviders lists the preferred provider first. A provider that is
// not configured stays in the list and is skipped by the orchestrator.
func speechProviders(cfg common.SpeechConfig, logger *slog.Logger) []tts.Provider {
	y := cfg.Yandex
	g := cfg.Google
	return []tts.Provider{
		yandex.New(yandex.Config{
			Enabled:          y.Enabled,
			OAuthToken:       y.OAuthToken,
			FolderID:         y.FolderID,
			Voice:            y.Voice,
			Format:           y.Format,
			IAMURL:           y.IAMURL,
			TTSURL:           y.TTSURL,
			Timeout:          y.Timeout,
			AuthTimeout:      y.AuthTimeout,
			TokenFallbackTTL: y.TokenFallbackTTL,
			Logger:           logger,
		}),
		google.New(google.Config{
			Lang:    g.Lang,
			Slow:    g.Slow,
			BaseURL: g.BaseURL,
			Timeout: g.Timeout,
			RPS:     g.RPS,
			Logger:  logger,
		}),
	}
}

func (a *app) Close(ctx context.Context) {
	if a.queue != nil {
		a.queue.Shutdown(ctx)
	}
	a.db.Close()
}
