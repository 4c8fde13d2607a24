package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/product-catalog/internal/domain"
)

// ProductRepository — хранилище продуктов.
type ProductRepository interface {
	// Get возвращает e.ErrProductNotFound, если продукта нет.
	Get(ctx context.Context, id int64) (*domain.Product, error)
	// Insert присваивает новый идентификатор и сохраняет продукт.
	Insert(ctx context.Context, category, name string) (*domain.Product, error)
	// Save сохраняет уже существующий продукт; для transient-продукта возвращает e.ErrTransientProduct.
	// Отсутствующая в хранилище запись не создаётся заново: возвращается e.ErrProductNotFound.
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	// Delete возвращает e.ErrProductNotFound, если удалять было нечего.
	Delete(ctx context.Context, product *domain.Product) error
	FindByCategory(ctx context.Context, query ProductPageQuery) (*ProductListRes, error)
	// ListDistinctCategories возвращает категории без повторов в детерминированном порядке.
	ListDistinctCategories(ctx context.Context) ([]string, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// Reschedule возвращает событие в очередь не раньше availableAt.
	Reschedule(ctx context.Context, id int64, availableAt time.Time, reason string) error
	MarkAsFailed(ctx context.Context, id int64, reason string) error
	// ReleaseStuck возвращает в очередь события, застрявшие в processing дольше olderThan.
	ReleaseStuck(ctx context.Context, olderThan time.Duration) (int64, error)
}

// TxManager выполняет fn в одной транзакции; ctx внутри fn несёт транзакцию для репозиториев.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
