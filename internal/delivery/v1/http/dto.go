package http

import (
	"github.com/DRSN-tech/product-catalog/internal/domain"
	"github.com/DRSN-tech/product-catalog/internal/usecase"
)

// ProductReq — тело запросов создания и полной замены продукта.
type ProductReq struct {
	Category string `json:"category" example:"tools"`
	Name     string `json:"name" example:"hammer"`
}

type ProductRes struct {
	ID       int64  `json:"id" example:"1"`
	Category string `json:"category" example:"tools"`
	Name     string `json:"name" example:"hammer"`
}

type ProductListRes struct {
	Items         []ProductRes `json:"items"`
	TotalPages    int          `json:"totalPages" example:"3"`
	TotalElements int64        `json:"totalElements" example:"25"`
	Page          int          `json:"page" example:"0"`
}

type CategoriesRes struct {
	Categories []string `json:"categories"`
}

func NewProductRes(p *domain.Product) ProductRes {
	return ProductRes{
		ID:       p.ID(),
		Category: p.Category(),
		Name:     p.Name(),
	}
}

func NewProductListRes(res *usecase.ProductListRes) ProductListRes {
	items := make([]ProductRes, 0, len(res.Items))
	for _, p := range res.Items {
		items = append(items, NewProductRes(p))
	}

	return ProductListRes{
		Items:         items,
		TotalPages:    res.TotalPages,
		TotalElements: res.TotalElements,
		Page:          res.Page,
	}
}
