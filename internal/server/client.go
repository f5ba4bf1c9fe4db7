package server

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls the order assistant service over any gRPC connection using
// the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UploadOrder(ctx context.Context, in *UploadOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, "UploadOrder", in, opts)
}

func (c *Client) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return invoke[ListOrdersResponse](ctx, c.cc, "ListOrders", in, opts)
}

func (c *Client) GetOrder(ctx context.Context, in *OrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, "GetOrder", in, opts)
}

func (c *Client) PrepareAssembly(ctx context.Context, in *OrderRequest, opts ...grpc.CallOption) (*PrepareAssemblyResponse, error) {
	return invoke[PrepareAssemblyResponse](ctx, c.cc, "PrepareAssembly", in, opts)
}

func (c *Client) UpdateItemStatus(ctx context.Context, in *UpdateItemStatusRequest, opts ...grpc.CallOption) (*ItemResponse, error) {
	return invoke[ItemResponse](ctx, c.cc, "UpdateItemStatus", in, opts)
}

func (c *Client) CompleteOrder(ctx context.Context, in *CompleteOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, "CompleteOrder", in, opts)
}

func (c *Client) DeleteOrder(ctx context.Context, in *OrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, "DeleteOrder", in, opts)
}

func (c *Client) ListFilters(ctx context.Context, in *ListFiltersRequest, opts ...grpc.CallOption) (*ListFiltersResponse, error) {
	return invoke[ListFiltersResponse](ctx, c.cc, "ListFilters", in, opts)
}

func (c *Client) AddFilter(ctx context.Context, in *AddFilterRequest, opts ...grpc.CallOption) (*FilterResponse, error) {
	return invoke[FilterResponse](ctx, c.cc, "AddFilter", in, opts)
}

func (c *Client) DeleteFilter(ctx context.Context, in *DeleteFilterRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteFilter", in, opts)
}

func (c *Client) AnnounceOrder(ctx context.Context, in *OrderRequest, opts ...grpc.CallOption) (*AnnounceResponse, error) {
	return invoke[AnnounceResponse](ctx, c.cc, "AnnounceOrder", in, opts)
}

func (c *Client) AnnounceItem(ctx context.Context, in *AnnounceItemRequest, opts ...grpc.CallOption) (*AnnounceResponse, error) {
	return invoke[AnnounceResponse](ctx, c.cc, "AnnounceItem", in, opts)
}

func (c *Client) ExportOrder(ctx context.Context, in *OrderRequest, opts ...grpc.CallOption) (*ExportOrderResponse, error) {
	return invoke[ExportOrderResponse](ctx, c.cc, "ExportOrder", in, opts)
}
