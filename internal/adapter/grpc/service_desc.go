package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service speaks only protobuf well-known types, so the descriptor is
// declared here instead of generated from a .proto file.

const (
	ServiceName = "allocations.v1.AllocationService"

	computeMethod       = "/" + ServiceName + "/Compute"
	historyMethod       = "/" + ServiceName + "/History"
	importWalletsMethod = "/" + ServiceName + "/ImportWallets"
)

// AllocationServiceServer is the server API for AllocationService
type AllocationServiceServer interface {
	// Compute runs one allocation cycle and returns the report
	Compute(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// History takes {level, from, to} and returns {level, rows}
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ImportWallets imports the CSV at the given path and returns the row count
	ImportWallets(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
}

// RegisterAllocationServiceServer registers srv on s
func RegisterAllocationServiceServer(s grpc.ServiceRegistrar, srv AllocationServiceServer) {
	s.RegisterService(&AllocationServiceDesc, srv)
}

// AllocationServiceDesc is the grpc.ServiceDesc for AllocationService
var AllocationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AllocationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compute", Handler: computeHandler},
		{MethodName: "History", Handler: historyHandler},
		{MethodName: "ImportWallets", Handler: importWalletsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "allocations/v1/allocations.proto",
}

func computeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AllocationServiceServer).Compute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: computeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AllocationServiceServer).Compute(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func historyHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AllocationServiceServer).History(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: historyMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AllocationServiceServer).History(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func importWalletsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AllocationServiceServer).ImportWallets(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: importWalletsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AllocationServiceServer).ImportWallets(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// AllocationServiceClient is the client API for AllocationService
type AllocationServiceClient interface {
	Compute(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	History(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ImportWallets(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
}

type allocationServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAllocationServiceClient creates a client over cc
func NewAllocationServiceClient(cc grpc.ClientConnInterface) AllocationServiceClient {
	return &allocationServiceClient{cc: cc}
}

func (c *allocationServiceClient) Compute(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, computeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *allocationServiceClient) History(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, historyMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *allocationServiceClient) ImportWallets(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, importWalletsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
