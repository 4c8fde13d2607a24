package pgdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/product-catalog/internal/domain"
	"github.com/DRSN-tech/product-catalog/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/product-catalog/internal/usecase"
	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/DRSN-tech/product-catalog/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// orderClauses — допустимые варианты сортировки. В SQL подставляется только значение из этой таблицы.
var orderClauses = map[usecase.SortOrder]string{
	usecase.SortByCategoryAsc: "category ASC, id ASC",
}

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

func (p *ProductRepo) Get(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, category, name, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var model converter.ProductModel
	err := tr.FromCtx(ctx, p.pool).QueryRow(ctx, query, id).
		Scan(&model.ID, &model.Category, &model.Name, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}

		return nil, e.StoreFailure(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// Insert создаёт продукт; идентификатор выдаёт последовательность BIGSERIAL.
func (p *ProductRepo) Insert(ctx context.Context, category, name string) (*domain.Product, error) {
	query := `
		INSERT INTO products (category, name)
		VALUES ($1, $2)
		RETURNING id, category, name, created_at, updated_at
	`

	var model converter.ProductModel
	err := tr.FromCtx(ctx, p.pool).QueryRow(ctx, query, category, name).
		Scan(&model.ID, &model.Category, &model.Name, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		return nil, e.StoreFailure(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// Save перезаписывает категорию и название сохранённого продукта.
// Если запись удалили между чтением и сохранением, возвращается e.ErrProductNotFound.
func (p *ProductRepo) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if !product.IsPersisted() {
		return nil, e.ErrTransientProduct
	}

	query := `
		UPDATE products
		SET category = $2, name = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, category, name, created_at, updated_at
	`

	model := p.conv.ToModel(product)
	err := tr.FromCtx(ctx, p.pool).QueryRow(ctx, query, model.ID, model.Category, model.Name).
		Scan(&model.ID, &model.Category, &model.Name, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}

		return nil, e.StoreFailure(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) Delete(ctx context.Context, product *domain.Product) error {
	result, err := tr.FromCtx(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, product.ID())
	if err != nil {
		return e.StoreFailure(whereami.WhereAmI(), err)
	}

	// Запись успели удалить в параллельном запросе
	if result.RowsAffected() == 0 {
		return e.ErrProductNotFound
	}

	return nil
}

// FindByCategory возвращает страницу продуктов категории вместе с общим количеством.
func (p *ProductRepo) FindByCategory(ctx context.Context, q usecase.ProductPageQuery) (*usecase.ProductListRes, error) {
	orderBy, ok := orderClauses[q.Sort]
	if !ok {
		return nil, e.ErrUnsupportedSort
	}

	db := tr.FromCtx(ctx, p.pool)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category = $1`, q.Category).Scan(&total); err != nil {
		return nil, e.StoreFailure(whereami.WhereAmI(), err)
	}

	if total == 0 || q.Offset() >= total {
		return usecase.NewProductListRes(nil, total, q.Page, q.Size), nil
	}

	query := fmt.Sprintf(`
		SELECT id, category, name, created_at, updated_at
		FROM products
		WHERE category = $1
		ORDER BY %s
		LIMIT $2 OFFSET $3
	`, orderBy)

	rows, err := db.Query(ctx, query, q.Category, q.Size, q.Offset())
	if err != nil {
		return nil, e.StoreFailure(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models := make([]*converter.ProductModel, 0, q.Size)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(&model.ID, &model.Category, &model.Name, &model.CreatedAt, &model.UpdatedAt); err != nil {
			return nil, e.StoreFailure(whereami.WhereAmI(), err)
		}

		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.StoreFailure(whereami.WhereAmI(), err)
	}

	return usecase.NewProductListRes(p.conv.ToArrEntity(models), total, q.Page, q.Size), nil
}

// ListDistinctCategories возвращает категории по возрастанию.
func (p *ProductRepo) ListDistinctCategories(ctx context.Context) ([]string, error) {
	rows, err := tr.FromCtx(ctx, p.pool).Query(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, e.StoreFailure(whereami.WhereAmI(), err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.StoreFailure(whereami.WhereAmI(), err)
	}

	return categories, nil
}
