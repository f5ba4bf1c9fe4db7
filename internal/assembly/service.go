// Package assembly supports picking an order: it annotates items with their
// announcement eligibility, renders announcements on demand and prerenders
// them in the background.
package assembly

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/order-assistant/internal/announce"
	"github.com/joseph-ayodele/order-assistant/internal/common"
	"github.com/joseph-ayodele/order-assistant/internal/entity"
	"github.com/joseph-ayodele/order-assistant/internal/repository"
	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

// Sheet is an order with every item annotated for assembly.
type Sheet struct {
	Order *entity.Order          `json:"order"`
	Items []announce.PreparedItem `json:"items"`
}

// Announced counts the items that will be spoken.
func (s *Sheet) Announced() int {
	n := 0
	for _, it := range s.Items {
		if it.ShouldAnnounce {
			n++
		}
	}
	return n
}

type Service struct {
	orders      repository.OrderRepository
	filters     repository.FilterWordRepository
	announcer   *announce.Announcer
	concurrency int
	logger      *slog.Logger
}

type Option func(*Service)

// WithConcurrency bounds the number of parallel syntheses in Prerender.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(orders repository.OrderRepository, filters repository.FilterWordRepository, a *announce.Announcer, opts ...Option) *Service {
	s := &Service{
		orders:      orders,
		filters:     filters,
		announcer:   a,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Prepare loads the order and marks which items are announced.
func (s *Service) Prepare(ctx context.Context, orderID int64) (*Sheet, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	words, err := s.filterWords(ctx)
	if err != nil {
		return nil, err
	}
	return &Sheet{Order: order, Items: announce.PrepareItems(order.Items, words)}, nil
}

func (s *Service) filterWords(ctx context.Context) ([]string, error) {
	fw, err := s.filters.List(ctx)
	if err != nil {
		return nil, err
	}
	return announce.Words(fw), nil
}

// AnnounceOrder renders the order number announcement.
func (s *Service) AnnounceOrder(ctx context.Context, orderID int64) (*tts.Artifact, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	art, err := s.announcer.Order(ctx, order.OrderNumber)
	if err != nil {
		s.logger.Error("assembly.announce.order.failed", "order_id", orderID, "error", err)
		return nil, synthesisFailed(err)
	}
	return art, nil
}

// AnnounceItem renders the phrase for one item.
func (s *Service) AnnounceItem(ctx context.Context, itemID int64) (*tts.Artifact, error) {
	item, err := s.orders.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	art, err := s.announcer.Item(ctx, *item)
	if err != nil {
		s.logger.Error("assembly.announce.item.failed", "item_id", itemID, "error", err)
		return nil, synthesisFailed(err)
	}
	return art, nil
}

// Prerender renders the order announcement and every announced item. Files
// already on disk are kept unless force is set. It returns the number of
// files written.
func (s *Service) Prerender(ctx context.Context, orderID int64, force bool) (int, error) {
	start := time.Now()
	sheet, err := s.Prepare(ctx, orderID)
	if err != nil {
		return 0, err
	}

	type task struct {
		base   string
		render func(context.Context) (*tts.Artifact, error)
	}
	tasks := []task{{
		base:   announce.OrderFileBase(sheet.Order.OrderNumber),
		render: func(ctx context.Context) (*tts.Artifact, error) { return s.announcer.Order(ctx, sheet.Order.OrderNumber) },
	}}
	for _, it := range sheet.Items {
		if !it.ShouldAnnounce {
			continue
		}
		item := it.OrderItem
		tasks = append(tasks, task{
			base:   announce.ItemFileBase(item.ID),
			render: func(ctx context.Context) (*tts.Artifact, error) { return s.announcer.Item(ctx, item) },
		})
	}

	results := make([]bool, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, t := range tasks {
		if !force {
			if _, ok := s.announcer.Existing(t.base); ok {
				continue
			}
		}
		g.Go(func() error {
			if _, err := t.render(gctx); err != nil {
				return err
			}
			results[i] = true
			return nil
		})
	}
	err = g.Wait()

	written := 0
	for _, ok := range results {
		if ok {
			written++
		}
	}
	if err != nil {
		s.logger.Warn("assembly.prerender.failed", "order_id", orderID, "written", written, "error", err)
		return written, synthesisFailed(err)
	}
	s.logger.Debug("assembly.prerender.ok", "order_id", orderID, "written", written, "tasks", len(tasks),
		"elapsed_ms", time.Since(start).Milliseconds())
	return written, nil
}

// ListFilters returns the filter words, newest first.
func (s *Service) ListFilters(ctx context.Context) ([]entity.FilterWord, error) {
	return s.filters.List(ctx)
}

func (s *Service) AddFilter(ctx context.Context, word string) (*entity.FilterWord, error) {
	fw, err := s.filters.Create(ctx, word)
	if err != nil {
		return nil, err
	}
	s.logger.Info("assembly.filter.added", "filter_id", fw.ID, "word", fw.Word)
	return fw, nil
}

func (s *Service) DeleteFilter(ctx context.Context, id int64) error {
	if err := s.filters.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("assembly.filter.deleted", "filter_id", id)
	return nil
}

func synthesisFailed(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return common.NewAppError("TTS_ERROR", "Не удалось синтезировать речь", errors.Join(common.ErrInternal, err))
}
