// Package proto holds the wire types and service descriptor of the
// identity.v1.Identity gRPC service. Messages travel as JSON.
package proto

import (
	"context"

	"google.golang.org/grpc"
)

const (
	Identity_ServiceName = "identity.v1.Identity"

	Identity_Register_FullMethodName      = "/identity.v1.Identity/Register"
	Identity_Login_FullMethodName         = "/identity.v1.Identity/Login"
	Identity_Refresh_FullMethodName       = "/identity.v1.Identity/Refresh"
	Identity_Logout_FullMethodName        = "/identity.v1.Identity/Logout"
	Identity_GetProfile_FullMethodName    = "/identity.v1.Identity/GetProfile"
	Identity_UpdateProfile_FullMethodName = "/identity.v1.Identity/UpdateProfile"
)

// IdentityClient is the client API for the Identity service.
type IdentityClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*UserResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error)
	GetProfile(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UserResponse, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UserResponse, error)
}

type identityClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityClient(cc grpc.ClientConnInterface) IdentityClient {
	return &identityClient{cc}
}

func (c *identityClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *identityClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	out := new(UserResponse)
	if err := c.invoke(ctx, Identity_Register_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.invoke(ctx, Identity_Login_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	out := new(TokenResponse)
	if err := c.invoke(ctx, Identity_Refresh_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, Identity_Logout_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityClient) GetProfile(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UserResponse, error) {
	out := new(UserResponse)
	if err := c.invoke(ctx, Identity_GetProfile_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	out := new(UserResponse)
	if err := c.invoke(ctx, Identity_UpdateProfile_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// IdentityServer is the server API for the Identity service.
type IdentityServer interface {
	Register(context.Context, *RegisterRequest) (*UserResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*Empty, error)
	GetProfile(context.Context, *Empty) (*UserResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*UserResponse, error)
}

func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&Identity_ServiceDesc, srv)
}

func unaryHandler[Req any](
	method string,
	call func(IdentityServer, context.Context, *Req) (any, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IdentityServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(IdentityServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Identity_ServiceDesc is the grpc.ServiceDesc for the Identity service.
var Identity_ServiceDesc = grpc.ServiceDesc{
	ServiceName: Identity_ServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler: unaryHandler(Identity_Register_FullMethodName, func(s IdentityServer, ctx context.Context, in *RegisterRequest) (any, error) {
				return s.Register(ctx, in)
			}),
		},
		{
			MethodName: "Login",
			Handler: unaryHandler(Identity_Login_FullMethodName, func(s IdentityServer, ctx context.Context, in *LoginRequest) (any, error) {
				return s.Login(ctx, in)
			}),
		},
		{
			MethodName: "Refresh",
			Handler: unaryHandler(Identity_Refresh_FullMethodName, func(s IdentityServer, ctx context.Context, in *RefreshRequest) (any, error) {
				return s.Refresh(ctx, in)
			}),
		},
		{
			MethodName: "Logout",
			Handler: unaryHandler(Identity_Logout_FullMethodName, func(s IdentityServer, ctx context.Context, in *LogoutRequest) (any, error) {
				return s.Logout(ctx, in)
			}),
		},
		{
			MethodName: "GetProfile",
			Handler: unaryHandler(Identity_GetProfile_FullMethodName, func(s IdentityServer, ctx context.Context, in *Empty) (any, error) {
				return s.GetProfile(ctx, in)
			}),
		},
		{
			MethodName: "UpdateProfile",
			Handler: unaryHandler(Identity_UpdateProfile_FullMethodName, func(s IdentityServer, ctx context.Context, in *UpdateProfileRequest) (any, error) {
				return s.UpdateProfile(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{},
}
