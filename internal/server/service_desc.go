package server

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "orderassistant.v1.OrderAssistant"

// OrderAssistantServer is the server API of the order assistant service.
type OrderAssistantServer interface {
	UploadOrder(context.Context, *UploadOrderRequest) (*OrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	GetOrder(context.Context, *OrderRequest) (*OrderResponse, error)
	PrepareAssembly(context.Context, *OrderRequest) (*PrepareAssemblyResponse, error)
	UpdateItemStatus(context.Context, *UpdateItemStatusRequest) (*ItemResponse, error)
	CompleteOrder(context.Context, *CompleteOrderRequest) (*OrderResponse, error)
	DeleteOrder(context.Context, *OrderRequest) (*OrderResponse, error)
	ListFilters(context.Context, *ListFiltersRequest) (*ListFiltersResponse, error)
	AddFilter(context.Context, *AddFilterRequest) (*FilterResponse, error)
	DeleteFilter(context.Context, *DeleteFilterRequest) (*Empty, error)
	AnnounceOrder(context.Context, *OrderRequest) (*AnnounceResponse, error)
	AnnounceItem(context.Context, *AnnounceItemRequest) (*AnnounceResponse, error)
	ExportOrder(context.Context, *OrderRequest) (*ExportOrderResponse, error)
}

func RegisterOrderAssistantServer(s grpc.ServiceRegistrar, srv OrderAssistantServer) {
	s.RegisterService(&serviceDesc, srv)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary adapts a typed method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(OrderAssistantServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(OrderAssistantServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderAssistantServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("UploadOrder", OrderAssistantServer.UploadOrder),
		unary("ListOrders", OrderAssistantServer.ListOrders),
		unary("GetOrder", OrderAssistantServer.GetOrder),
		unary("PrepareAssembly", OrderAssistantServer.PrepareAssembly),
		unary("UpdateItemStatus", OrderAssistantServer.UpdateItemStatus),
		unary("CompleteOrder", OrderAssistantServer.CompleteOrder),
		unary("DeleteOrder", OrderAssistantServer.DeleteOrder),
		unary("ListFilters", OrderAssistantServer.ListFilters),
		unary("AddFilter", OrderAssistantServer.AddFilter),
		unary("DeleteFilter", OrderAssistantServer.DeleteFilter),
		unary("AnnounceOrder", OrderAssistantServer.AnnounceOrder),
		unary("AnnounceItem", OrderAssistantServer.AnnounceItem),
		unary("ExportOrder", OrderAssistantServer.ExportOrder),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orderassistant/v1/orderassistant.json",
}
