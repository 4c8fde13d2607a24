package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/product-catalog/internal/domain"
	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/DRSN-tech/product-catalog/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/DRSN-tech/product-catalog/internal/usecase"

// ProductUseCase реализует бизнес-правила каталога. Репозиторий напрямую снаружи не вызывается.
type ProductUseCase struct {
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	txManager   TxManager
	logger      logger.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

func NewProductUC(
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	txManager TxManager,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
		now:         time.Now,
	}
}

// GetProduct возвращает продукт по идентификатору или e.ErrProductNotFound.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (_ *domain.Product, err error) {
	const op = "ProductUseCase.GetProduct"
	ctx, span := p.startSpan(ctx, op, attribute.Int64("product.id", id))
	defer func() { endSpan(span, err) }()

	product, err := p.productRepo.Get(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return product, nil
}

// CreateProduct создаёт продукт. Категория и название обязательны.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (_ *domain.Product, err error) {
	const op = "ProductUseCase.CreateProduct"
	ctx, span := p.startSpan(ctx, op, attribute.String("product.category", req.Category))
	defer func() { endSpan(span, err) }()

	// Валидация данных
	draft, err := domain.NewProduct(req.Category, req.Name)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var created *domain.Product
	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = p.productRepo.Insert(ctx, draft.Category(), draft.Name())
		if err != nil {
			return err
		}

		return p.recordEvent(ctx, ProductCreated, created)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	span.SetAttributes(attribute.Int64("product.id", created.ID()))
	p.logger.Infof("product created: id=%d category=%q", created.ID(), created.Category())
	return created, nil
}

// UpdateProduct полностью заменяет категорию и название существующего продукта.
// Сначала проверяется существование (e.ErrProductNotFound), затем значения полей.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (_ *domain.Product, err error) {
	const op = "ProductUseCase.UpdateProduct"
	ctx, span := p.startSpan(ctx, op, attribute.Int64("product.id", req.ID))
	defer func() { endSpan(span, err) }()

	var saved *domain.Product
	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := p.productRepo.Get(ctx, req.ID)
		if err != nil {
			return err
		}

		if err := product.ReplaceDetails(req.Category, req.Name); err != nil {
			return err
		}

		saved, err = p.productRepo.Save(ctx, product)
		if err != nil {
			return err
		}

		return p.recordEvent(ctx, ProductUpdated, saved)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.logger.Infof("product updated: id=%d", saved.ID())
	return saved, nil
}

// DeleteProduct удаляет продукт. Повторное удаление возвращает e.ErrProductNotFound.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) (err error) {
	const op = "ProductUseCase.DeleteProduct"
	ctx, span := p.startSpan(ctx, op, attribute.Int64("product.id", id))
	defer func() { endSpan(span, err) }()

	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := p.productRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if err := p.productRepo.Delete(ctx, product); err != nil {
			return err
		}

		return p.recordEvent(ctx, ProductDeleted, product)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	p.logger.Infof("product deleted: id=%d", id)
	return nil
}

// ListByCategory возвращает страницу продуктов категории, отсортированную по категории по возрастанию.
// Порядок фиксирован; сортировку, заданную вызывающим, сервис не принимает.
func (p *ProductUseCase) ListByCategory(ctx context.Context, req *ListByCategoryReq) (_ *ProductListRes, err error) {
	const op = "ProductUseCase.ListByCategory"
	ctx, span := p.startSpan(ctx, op,
		attribute.String("product.category", req.Category),
		attribute.Int("page", req.Page),
		attribute.Int("size", req.Size),
	)
	defer func() { endSpan(span, err) }()

	if err := validatePage(req.Page, req.Size); err != nil {
		return nil, e.Wrap(op, err)
	}

	res, err := p.productRepo.FindByCategory(ctx, ProductPageQuery{
		Category: req.Category,
		Page:     req.Page,
		Size:     req.Size,
		Sort:     SortByCategoryAsc,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	span.SetAttributes(attribute.Int64("products.total", res.TotalElements))
	return res, nil
}

// ListCategories возвращает различные категории каталога.
func (p *ProductUseCase) ListCategories(ctx context.Context) (_ []string, err error) {
	const op = "ProductUseCase.ListCategories"
	ctx, span := p.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	categories, err := p.productRepo.ListDistinctCategories(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if categories == nil {
		categories = make([]string, 0)
	}

	return categories, nil
}

// recordEvent пишет событие в outbox в той же транзакции, что и изменение продукта.
func (p *ProductUseCase) recordEvent(ctx context.Context, eventType OutboxEventType, product *domain.Product) error {
	event, err := NewProductEvent(eventType, product, p.now())
	if err != nil {
		return err
	}

	_, err = p.outboxRepo.Create(ctx, event)
	return err
}

func validatePage(page, size int) error {
	if page < 0 {
		return e.ErrInvalidPage
	}

	if size < 1 || size > MaxPageSize {
		return e.ErrInvalidPageSize
	}

	return nil
}

func (p *ProductUseCase) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
