package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName = "catalog.v1.ProductService"

	getProductMethod             = "/" + ServiceName + "/GetProduct"
	createProductMethod          = "/" + ServiceName + "/CreateProduct"
	updateProductMethod          = "/" + ServiceName + "/UpdateProduct"
	deleteProductMethod          = "/" + ServiceName + "/DeleteProduct"
	listProductsByCategoryMethod = "/" + ServiceName + "/ListProductsByCategory"
	listCategoriesMethod         = "/" + ServiceName + "/ListCategories"
)

// ProductServiceServer — серверная сторона catalog.v1.ProductService.
type ProductServiceServer interface {
	GetProduct(context.Context, *GetProductRequest) (*Product, error)
	CreateProduct(context.Context, *CreateProductRequest) (*Product, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*Product, error)
	DeleteProduct(context.Context, *DeleteProductRequest) (*DeleteProductResponse, error)
	ListProductsByCategory(context.Context, *ListProductsByCategoryRequest) (*ListProductsByCategoryResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
}

func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ProductServiceDesc, srv)
}

// unaryHandler связывает типизированный метод сервиса с grpc.MethodHandler.
func unaryHandler[Req any, Res any](
	fullMethod string,
	call func(srv ProductServiceServer, ctx context.Context, req *Req) (*Res, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(ProductServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ProductServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ProductServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProduct",
			Handler:    unaryHandler(getProductMethod, ProductServiceServer.GetProduct),
		},
		{
			MethodName: "CreateProduct",
			Handler:    unaryHandler(createProductMethod, ProductServiceServer.CreateProduct),
		},
		{
			MethodName: "UpdateProduct",
			Handler:    unaryHandler(updateProductMethod, ProductServiceServer.UpdateProduct),
		},
		{
			MethodName: "DeleteProduct",
			Handler:    unaryHandler(deleteProductMethod, ProductServiceServer.DeleteProduct),
		},
		{
			MethodName: "ListProductsByCategory",
			Handler:    unaryHandler(listProductsByCategoryMethod, ProductServiceServer.ListProductsByCategory),
		},
		{
			MethodName: "ListCategories",
			Handler:    unaryHandler(listCategoriesMethod, ProductServiceServer.ListCategories),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/product_service.proto",
}

// ProductServiceClient — клиент catalog.v1.ProductService поверх JSON-кодека.
type ProductServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProductServiceClient(cc grpc.ClientConnInterface) *ProductServiceClient {
	return &ProductServiceClient{cc: cc}
}

func invoke[Res any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Res, error) {
	out := new(Res)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *ProductServiceClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*Product, error) {
	return invoke[Product](ctx, c.cc, getProductMethod, in, opts)
}

func (c *ProductServiceClient) CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*Product, error) {
	return invoke[Product](ctx, c.cc, createProductMethod, in, opts)
}

func (c *ProductServiceClient) UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*Product, error) {
	return invoke[Product](ctx, c.cc, updateProductMethod, in, opts)
}

func (c *ProductServiceClient) DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*DeleteProductResponse, error) {
	return invoke[DeleteProductResponse](ctx, c.cc, deleteProductMethod, in, opts)
}

func (c *ProductServiceClient) ListProductsByCategory(ctx context.Context, in *ListProductsByCategoryRequest, opts ...grpc.CallOption) (*ListProductsByCategoryResponse, error) {
	return invoke[ListProductsByCategoryResponse](ctx, c.cc, listProductsByCategoryMethod, in, opts)
}

func (c *ProductServiceClient) ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	return invoke[ListCategoriesResponse](ctx, c.cc, listCategoriesMethod, in, opts)
}
