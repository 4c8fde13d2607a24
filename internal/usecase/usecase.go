package usecase

import (
	"context"

	"github.com/DRSN-tech/product-catalog/internal/domain"
)

type ProductUC interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListByCategory(ctx context.Context, req *ListByCategoryReq) (*ProductListRes, error)
	ListCategories(ctx context.Context) ([]string, error)
}
