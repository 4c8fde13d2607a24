package grpc

import (
	"context"

	"github.com/DRSN-tech/product-catalog/internal/usecase"
	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/DRSN-tech/product-catalog/pkg/logger"
)

type ProductService struct {
	prUC   usecase.ProductUC
	logger logger.Logger
}

func NewProductService(prUC usecase.ProductUC, logger logger.Logger) *ProductService {
	return &ProductService{prUC: prUC, logger: logger}
}

func (g *ProductService) GetProduct(ctx context.Context, req *GetProductRequest) (*Product, error) {
	const op = "grpc.GetProduct"

	product, err := g.prUC.GetProduct(ctx, req.Id)
	if err != nil {
		return nil, g.fail(op, err)
	}

	return toGRPCProduct(product), nil
}

func (g *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	const op = "grpc.CreateProduct"

	product, err := g.prUC.CreateProduct(ctx, usecase.NewCreateProductReq(req.Category, req.Name))
	if err != nil {
		return nil, g.fail(op, err)
	}

	return toGRPCProduct(product), nil
}

func (g *ProductService) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*Product, error) {
	const op = "grpc.UpdateProduct"

	product, err := g.prUC.UpdateProduct(ctx, usecase.NewUpdateProductReq(req.Id, req.Category, req.Name))
	if err != nil {
		return nil, g.fail(op, err)
	}

	return toGRPCProduct(product), nil
}

func (g *ProductService) DeleteProduct(ctx context.Context, req *DeleteProductRequest) (*DeleteProductResponse, error) {
	const op = "grpc.DeleteProduct"

	if err := g.prUC.DeleteProduct(ctx, req.Id); err != nil {
		return nil, g.fail(op, err)
	}

	return &DeleteProductResponse{}, nil
}

func (g *ProductService) ListProductsByCategory(ctx context.Context, req *ListProductsByCategoryRequest) (*ListProductsByCategoryResponse, error) {
	const op = "grpc.ListProductsByCategory"

	res, err := g.prUC.ListByCategory(ctx, usecase.NewListByCategoryReq(req.Category, int(req.Page), int(req.Size)))
	if err != nil {
		return nil, g.fail(op, err)
	}

	return toListResponse(res), nil
}

func (g *ProductService) ListCategories(ctx context.Context, _ *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	const op = "grpc.ListCategories"

	categories, err := g.prUC.ListCategories(ctx)
	if err != nil {
		return nil, g.fail(op, err)
	}

	return &ListCategoriesResponse{Categories: categories}, nil
}

func (g *ProductService) fail(op string, err error) error {
	err = e.Wrap(op, err)
	if e.IsValidation(err) || errorsIsNotFound(err) {
		g.logger.Warnf("%s", err.Error())
	} else {
		g.logger.Errorf(err, "%s", op)
	}

	return GRPCErrorResponse(err)
}
