// Package memory содержит хранилища в памяти процесса для CATALOG_STORAGE=memory и тестов.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DRSN-tech/product-catalog/internal/domain"
	"github.com/DRSN-tech/product-catalog/internal/usecase"
	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/jimlawless/whereami"
)

type productRecord struct {
	id        int64
	category  string
	name      string
	createdAt time.Time
	updatedAt *time.Time
}

func (r productRecord) toEntity() *domain.Product {
	return domain.RestoreProduct(r.id, r.category, r.name, r.createdAt, r.updatedAt)
}

// ProductRepo хранит продукты в map под RWMutex. Наружу отдаются копии, поэтому
// изменения возвращённых продуктов не видны хранилищу до Save.
type ProductRepo struct {
	mu       sync.RWMutex
	products map[int64]productRecord
	nextID   int64
	now      func() time.Time
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		products: make(map[int64]productRecord),
		now:      time.Now,
	}
}

func (r *ProductRepo) Get(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.products[id]
	if !ok {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return rec.toEntity(), nil
}

func (r *ProductRepo) Insert(_ context.Context, category, name string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec := productRecord{
		id:        r.nextID,
		category:  category,
		name:      name,
		createdAt: r.now().UTC(),
	}
	r.products[rec.id] = rec

	return rec.toEntity(), nil
}

func (r *ProductRepo) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if !product.IsPersisted() {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrTransientProduct)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.products[product.ID()]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	now := r.now().UTC()
	rec.updatedAt = &now
	rec.category = product.Category()
	rec.name = product.Name()
	r.products[rec.id] = rec

	return rec.toEntity(), nil
}

func (r *ProductRepo) Delete(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID()]; !ok {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	delete(r.products, product.ID())
	return nil
}

func (r *ProductRepo) FindByCategory(_ context.Context, query usecase.ProductPageQuery) (*usecase.ProductListRes, error) {
	if query.Sort != usecase.SortByCategoryAsc {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrUnsupportedSort)
	}

	r.mu.RLock()
	matched := make([]productRecord, 0)
	for _, rec := range r.products {
		if rec.category == query.Category {
			matched = append(matched, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].category != matched[j].category {
			return matched[i].category < matched[j].category
		}
		return matched[i].id < matched[j].id
	})

	total := int64(len(matched))
	items := make([]*domain.Product, 0, query.Size)
	if offset := query.Offset(); offset < total {
		end := offset + int64(query.Size)
		if end > total {
			end = total
		}
		for _, rec := range matched[offset:end] {
			items = append(items, rec.toEntity())
		}
	}

	return usecase.NewProductListRes(items, total, query.Page, query.Size), nil
}

func (r *ProductRepo) ListDistinctCategories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	seen := make(map[string]struct{}, len(r.products))
	for _, rec := range r.products {
		seen[rec.category] = struct{}{}
	}
	r.mu.RUnlock()

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return categories, nil
}
