package contract

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// AuthServiceName is the fully qualified name of the auth service.
const AuthServiceName = "cacart.v1.Auth"

const (
	AuthSignUpFullMethod             = "/" + AuthServiceName + "/SignUp"
	AuthSignInWithPasswordFullMethod = "/" + AuthServiceName + "/SignInWithPassword"
	AuthSignInAnonymouslyFullMethod  = "/" + AuthServiceName + "/SignInAnonymously"
	AuthRefreshTokenFullMethod       = "/" + AuthServiceName + "/RefreshToken"
	AuthGetSessionFullMethod         = "/" + AuthServiceName + "/GetSession"
	AuthSignOutFullMethod            = "/" + AuthServiceName + "/SignOut"
)

// AuthServer is the server API of the auth service.
// GetSession and SignOut require a bearer access token.
type AuthServer interface {
	SignUp(context.Context, *CredentialsRequest) (*AuthResponse, error)
	SignInWithPassword(context.Context, *CredentialsRequest) (*AuthResponse, error)
	SignInAnonymously(context.Context, *emptypb.Empty) (*AuthResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error)
	GetSession(context.Context, *emptypb.Empty) (*SessionInfo, error)
	SignOut(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// UnimplementedAuthServer answers every method with codes.Unimplemented.
type UnimplementedAuthServer struct{}

func (UnimplementedAuthServer) SignUp(context.Context, *CredentialsRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedAuthServer) SignInWithPassword(context.Context, *CredentialsRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignInWithPassword not implemented")
}
func (UnimplementedAuthServer) SignInAnonymously(context.Context, *emptypb.Empty) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignInAnonymously not implemented")
}
func (UnimplementedAuthServer) RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedAuthServer) GetSession(context.Context, *emptypb.Empty) (*SessionInfo, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSession not implemented")
}
func (UnimplementedAuthServer) SignOut(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}

// AuthServiceDesc describes the auth service for grpc.Server registration.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SignUp",
			Handler: unaryHandler(AuthSignUpFullMethod, func(srv any, ctx context.Context, in *CredentialsRequest) (*AuthResponse, error) {
				return srv.(AuthServer).SignUp(ctx, in)
			}),
		},
		{
			MethodName: "SignInWithPassword",
			Handler: unaryHandler(AuthSignInWithPasswordFullMethod, func(srv any, ctx context.Context, in *CredentialsRequest) (*AuthResponse, error) {
				return srv.(AuthServer).SignInWithPassword(ctx, in)
			}),
		},
		{
			MethodName: "SignInAnonymously",
			Handler: unaryHandler(AuthSignInAnonymouslyFullMethod, func(srv any, ctx context.Context, in *emptypb.Empty) (*AuthResponse, error) {
				return srv.(AuthServer).SignInAnonymously(ctx, in)
			}),
		},
		{
			MethodName: "RefreshToken",
			Handler: unaryHandler(AuthRefreshTokenFullMethod, func(srv any, ctx context.Context, in *RefreshTokenRequest) (*AuthResponse, error) {
				return srv.(AuthServer).RefreshToken(ctx, in)
			}),
		},
		{
			MethodName: "GetSession",
			Handler: unaryHandler(AuthGetSessionFullMethod, func(srv any, ctx context.Context, in *emptypb.Empty) (*SessionInfo, error) {
				return srv.(AuthServer).GetSession(ctx, in)
			}),
		},
		{
			MethodName: "SignOut",
			Handler: unaryHandler(AuthSignOutFullMethod, func(srv any, ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
				return srv.(AuthServer).SignOut(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cacart/v1/auth",
}

// RegisterAuthServer registers srv on s.
func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

// AuthClient is the client API of the auth service.
type AuthClient interface {
	SignUp(ctx context.Context, in *CredentialsRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	SignInWithPassword(ctx context.Context, in *CredentialsRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	SignInAnonymously(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*AuthResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	GetSession(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*SessionInfo, error)
	SignOut(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type authClient struct {
	cc grpc.ClientConnInterface
}

// NewAuthClient creates an auth service client on cc.
func NewAuthClient(cc grpc.ClientConnInterface) AuthClient {
	return &authClient{cc: cc}
}

func (c *authClient) SignUp(ctx context.Context, in *CredentialsRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, AuthSignUpFullMethod, in, opts)
}

func (c *authClient) SignInWithPassword(ctx context.Context, in *CredentialsRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, AuthSignInWithPasswordFullMethod, in, opts)
}

func (c *authClient) SignInAnonymously(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, AuthSignInAnonymouslyFullMethod, in, opts)
}

func (c *authClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, AuthRefreshTokenFullMethod, in, opts)
}

func (c *authClient) GetSession(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*SessionInfo, error) {
	return invoke[SessionInfo](ctx, c.cc, AuthGetSessionFullMethod, in, opts)
}

func (c *authClient) SignOut(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, AuthSignOutFullMethod, in, opts)
}
