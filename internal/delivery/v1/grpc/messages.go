package grpc

import (
	"github.com/DRSN-tech/product-catalog/internal/domain"
	"github.com/DRSN-tech/product-catalog/internal/usecase"
)

type Product struct {
	Id       int64  `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

type GetProductRequest struct {
	Id int64 `json:"id"`
}

type CreateProductRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

type UpdateProductRequest struct {
	Id       int64  `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

type DeleteProductRequest struct {
	Id int64 `json:"id"`
}

type DeleteProductResponse struct{}

type ListProductsByCategoryRequest struct {
	Category string `json:"category"`
	Page     int32  `json:"page"`
	Size     int32  `json:"size"`
}

type ListProductsByCategoryResponse struct {
	Items         []*Product `json:"items"`
	TotalPages    int32      `json:"totalPages"`
	TotalElements int64      `json:"totalElements"`
	Page          int32      `json:"page"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

func toGRPCProduct(p *domain.Product) *Product {
	return &Product{
		Id:       p.ID(),
		Category: p.Category(),
		Name:     p.Name(),
	}
}

func toListResponse(res *usecase.ProductListRes) *ListProductsByCategoryResponse {
	items := make([]*Product, 0, len(res.Items))
	for _, p := range res.Items {
		items = append(items, toGRPCProduct(p))
	}

	return &ListProductsByCategoryResponse{
		Items:         items,
		TotalPages:    int32(res.TotalPages),
		TotalElements: res.TotalElements,
		Page:          int32(res.Page),
	}
}
