package moviepb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	RecommendService_Recommend_FullMethodName  = "/popflix.RecommendService/Recommend"
	RecommendService_ListTitles_FullMethodName = "/popflix.RecommendService/ListTitles"
)

type RecommendServiceServer interface {
	Recommend(context.Context, *RecommendRequest) (*RecommendResponse, error)
	ListTitles(context.Context, *ListTitlesRequest) (*ListTitlesResponse, error)
}

// UnimplementedRecommendServiceServer can be embedded for forward compatibility.
type UnimplementedRecommendServiceServer struct{}

func (UnimplementedRecommendServiceServer) Recommend(context.Context, *RecommendRequest) (*RecommendResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Recommend not implemented")
}

func (UnimplementedRecommendServiceServer) ListTitles(context.Context, *ListTitlesRequest) (*ListTitlesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTitles not implemented")
}

func RegisterRecommendServiceServer(s grpc.ServiceRegistrar, srv RecommendServiceServer) {
	s.RegisterService(&RecommendService_ServiceDesc, srv)
}

func recommendHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RecommendRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecommendServiceServer).Recommend(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RecommendService_Recommend_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecommendServiceServer).Recommend(ctx, req.(*RecommendRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listTitlesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListTitlesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecommendServiceServer).ListTitles(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RecommendService_ListTitles_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecommendServiceServer).ListTitles(ctx, req.(*ListTitlesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var RecommendService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "popflix.RecommendService",
	HandlerType: (*RecommendServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Recommend", Handler: recommendHandler},
		{MethodName: "ListTitles", Handler: listTitlesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "popflix/recommend",
}

type RecommendServiceClient interface {
	Recommend(ctx context.Context, in *RecommendRequest, opts ...grpc.CallOption) (*RecommendResponse, error)
	ListTitles(ctx context.Context, in *ListTitlesRequest, opts ...grpc.CallOption) (*ListTitlesResponse, error)
}

type recommendServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRecommendServiceClient(cc grpc.ClientConnInterface) RecommendServiceClient {
	return &recommendServiceClient{cc: cc}
}

func (c *recommendServiceClient) Recommend(ctx context.Context, in *RecommendRequest, opts ...grpc.CallOption) (*RecommendResponse, error) {
	out := new(RecommendResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, RecommendService_Recommend_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recommendServiceClient) ListTitles(ctx context.Context, in *ListTitlesRequest, opts ...grpc.CallOption) (*ListTitlesResponse, error) {
	out := new(ListTitlesResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, RecommendService_ListTitles_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
