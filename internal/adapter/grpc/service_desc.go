package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "user.v1.UserService"

const (
	listUsersMethod  = "/" + ServiceName + "/ListUsers"
	getUserMethod    = "/" + ServiceName + "/GetUser"
	createUserMethod = "/" + ServiceName + "/CreateUser"
	blockUserMethod  = "/" + ServiceName + "/BlockUser"
)

// UserServiceServer is the server API for the user service.
// Payloads are google.protobuf.Struct documents.
type UserServiceServer interface {
	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BlockUser(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// RegisterUserServiceServer registers srv on s.
func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserServiceDesc, srv)
}

// UserServiceDesc describes the user service for grpc.Server.
var UserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListUsers", Handler: structHandler(listUsersMethod, UserServiceServer.ListUsers)},
		{MethodName: "GetUser", Handler: structHandler(getUserMethod, UserServiceServer.GetUser)},
		{MethodName: "CreateUser", Handler: structHandler(createUserMethod, UserServiceServer.CreateUser)},
		{MethodName: "BlockUser", Handler: structHandler(blockUserMethod, UserServiceServer.BlockUser)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "user/v1/user_service.proto",
}

// structHandler adapts a typed method to grpc.MethodHandler, running the interceptor chain when present.
func structHandler[Resp any](fullMethod string, call func(UserServiceServer, context.Context, *structpb.Struct) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UserServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(UserServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// UserServiceClient is the client API for the user service.
type UserServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewUserServiceClient creates a client on top of cc.
func NewUserServiceClient(cc grpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

// ListUsers calls UserService.ListUsers.
func (c *UserServiceClient) ListUsers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listUsersMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser calls UserService.GetUser.
func (c *UserServiceClient) GetUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser calls UserService.CreateUser.
func (c *UserServiceClient) CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, createUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// BlockUser calls UserService.BlockUser.
func (c *UserServiceClient) BlockUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, blockUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
