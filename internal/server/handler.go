package server

import (
	"bytes"
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/order-assistant/internal/assembly"
	"github.com/joseph-ayodele/order-assistant/internal/common"
	"github.com/joseph-ayodele/order-assistant/internal/export"
	"github.com/joseph-ayodele/order-assistant/internal/orders"
	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

// AudioPrefix is the HTTP path rendered artifacts are served under.
const AudioPrefix = "/audio/"

// maxUploadSize bounds the workbook accepted by UploadOrder.
const maxUploadSize = 16 << 20

// OrderAssistant implements OrderAssistantServer on top of the services.
type OrderAssistant struct {
	orders   *orders.Service
	assembly *assembly.Service
	export   *export.Service
	logger   *slog.Logger
}

func NewOrderAssistant(o *orders.Service, a *assembly.Service, e *export.Service, logger *slog.Logger) *OrderAssistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderAssistant{orders: o, assembly: a, export: e, logger: logger}
}

var _ OrderAssistantServer = (*OrderAssistant)(nil)

func requireID(name string, id int64) error {
	return common.ValidateAndReturnError(common.NewValidator().Field(name, id, common.Positive))
}

func (s *OrderAssistant) UploadOrder(ctx context.Context, req *UploadOrderRequest) (*OrderResponse, error) {
	if strings.TrimSpace(req.Filename) == "" || len(req.Content) == 0 {
		return nil, status.Error(codes.InvalidArgument, "Файл не выбран")
	}
	if len(req.Content) > maxUploadSize {
		return nil, status.Error(codes.InvalidArgument, "Файл слишком большой")
	}
	order, err := s.orders.Upload(ctx, req.Filename, bytes.NewReader(req.Content))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &OrderResponse{Order: order}, nil
}

func (s *OrderAssistant) ListOrders(ctx context.Context, _ *ListOrdersRequest) (*ListOrdersResponse, error) {
	list, err := s.orders.List(ctx)
	if err != nil {
		s.logger.Error("failed to list orders", "error", err)
		return nil, common.ToStatus(err)
	}
	return &ListOrdersResponse{Orders: list}, nil
}

func (s *OrderAssistant) GetOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	if err := requireID("order_id", req.OrderID); err != nil {
		return nil, err
	}
	order, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &OrderResponse{Order: order}, nil
}

func (s *OrderAssistant) PrepareAssembly(ctx context.Context, req *OrderRequest) (*PrepareAssemblyResponse, error) {
	if err := requireID("order_id", req.OrderID); err != nil {
		return nil, err
	}
	sheet, err := s.assembly.Prepare(ctx, req.OrderID)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	order := *sheet.Order
	order.Items = nil
	return &PrepareAssemblyResponse{Order: &order, Items: sheet.Items, Announced: sheet.Announced()}, nil
}

func (s *OrderAssistant) UpdateItemStatus(ctx context.Context, req *UpdateItemStatusRequest) (*ItemResponse, error) {
	if err := requireID("order_id", req.OrderID); err != nil {
		return nil, err
	}
	if err := requireID("item_id", req.ItemID); err != nil {
		return nil, err
	}
	item, err := s.orders.UpdateItemStatus(ctx, req.OrderID, req.ItemID, req.Status)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &ItemResponse{Item: item}, nil
}

func (s *OrderAssistant) CompleteOrder(ctx context.Context, req *CompleteOrderRequest) (*OrderResponse, error) {
	if err := requireID("order_id", req.OrderID); err != nil {
		return nil, err
	}
	order, err := s.orders.Complete(ctx, req.OrderID, req.Status)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &OrderResponse{Order: order}, nil
}

func (s *OrderAssistant) DeleteOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	if err := requireID("order_id", req.OrderID); err != nil {
		return nil, err
	}
	order, err := s.orders.Delete(ctx, req.OrderID)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &OrderResponse{Order: order}, nil
}

func (s *OrderAssistant) ListFilters(ctx context.Context, _ *ListFiltersRequest) (*ListFiltersResponse, error) {
	list, err := s.assembly.ListFilters(ctx)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &ListFiltersResponse{Filters: list}, nil
}

func (s *OrderAssistant) AddFilter(ctx context.Context, req *AddFilterRequest) (*FilterResponse, error) {
	fw, err := s.assembly.AddFilter(ctx, req.Word)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &FilterResponse{Filter: fw}, nil
}

func (s *OrderAssistant) DeleteFilter(ctx context.Context, req *DeleteFilterRequest) (*Empty, error) {
	if err := requireID("filter_id", req.FilterID); err != nil {
		return nil, err
	}
	if err := s.assembly.DeleteFilter(ctx, req.FilterID); err != nil {
		return nil, common.ToStatus(err)
	}
	return &Empty{}, nil
}

func (s *OrderAssistant) AnnounceOrder(ctx context.Context, req *OrderRequest) (*AnnounceResponse, error) {
	if err := requireID("order_id", req.OrderID); err != nil {
		return nil, err
	}
	art, err := s.assembly.AnnounceOrder(ctx, req.OrderID)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return announceResponse(art, audioURL(art)), nil
}

func (s *OrderAssistant) AnnounceItem(ctx context.Context, req *AnnounceItemRequest) (*AnnounceResponse, error) {
	if err := requireID("item_id", req.ItemID); err != nil {
		return nil, err
	}
	art, err := s.assembly.AnnounceItem(ctx, req.ItemID)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return announceResponse(art, audioURL(art)), nil
}

func (s *OrderAssistant) ExportOrder(ctx context.Context, req *OrderRequest) (*ExportOrderResponse, error) {
	if err := requireID("order_id", req.OrderID); err != nil {
		return nil, err
	}
	data, name, err := s.export.ExportOrderXLSX(ctx, req.OrderID)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "order_id", req.OrderID, "error", err)
		return nil, common.ToStatus(err)
	}
	return &ExportOrderResponse{Filename: name, Xlsx: data}, nil
}

func audioURL(a *tts.Artifact) string {
	return path.Join(AudioPrefix, filepath.Base(a.Path))
}
