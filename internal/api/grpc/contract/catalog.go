package contract

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CatalogServiceName is the fully qualified name of the catalog service.
const CatalogServiceName = "cacart.v1.Catalog"

const (
	CatalogListProductsFullMethod = "/" + CatalogServiceName + "/ListProducts"
	CatalogGetProductFullMethod   = "/" + CatalogServiceName + "/GetProduct"
)

// CatalogServer is the server API of the catalog service.
type CatalogServer interface {
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	GetProduct(context.Context, *GetProductRequest) (*Product, error)
}

// UnimplementedCatalogServer answers every method with codes.Unimplemented.
type UnimplementedCatalogServer struct{}

func (UnimplementedCatalogServer) ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListProducts not implemented")
}
func (UnimplementedCatalogServer) GetProduct(context.Context, *GetProductRequest) (*Product, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProduct not implemented")
}

// CatalogServiceDesc describes the catalog service for grpc.Server registration.
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListProducts",
			Handler: unaryHandler(CatalogListProductsFullMethod, func(srv any, ctx context.Context, in *ListProductsRequest) (*ListProductsResponse, error) {
				return srv.(CatalogServer).ListProducts(ctx, in)
			}),
		},
		{
			MethodName: "GetProduct",
			Handler: unaryHandler(CatalogGetProductFullMethod, func(srv any, ctx context.Context, in *GetProductRequest) (*Product, error) {
				return srv.(CatalogServer).GetProduct(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cacart/v1/catalog",
}

// RegisterCatalogServer registers srv on s.
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

// CatalogClient is the client API of the catalog service.
type CatalogClient interface {
	ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error)
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*Product, error)
}

type catalogClient struct {
	cc grpc.ClientConnInterface
}

// NewCatalogClient creates a catalog service client on cc.
func NewCatalogClient(cc grpc.ClientConnInterface) CatalogClient {
	return &catalogClient{cc: cc}
}

func (c *catalogClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.cc, CatalogListProductsFullMethod, in, opts)
}

func (c *catalogClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*Product, error) {
	return invoke[Product](ctx, c.cc, CatalogGetProductFullMethod, in, opts)
}
