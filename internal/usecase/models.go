package usecase

import (
	"math"
	"time"

	"github.com/DRSN-tech/product-catalog/internal/domain"
)

// MaxPageSize — верхняя граница размера страницы при листинге.
const MaxPageSize = 100

// PRODUCT USECASE

// CreateProductReq — запрос на создание продукта. Оба поля обязательны.
type CreateProductReq struct {
	Category string
	Name     string
}

// UpdateProductReq — запрос на полную замену категории и названия продукта.
// Частичного обновления нет: пустое поле не означает «оставить как есть».
type UpdateProductReq struct {
	ID       int64
	Category string
	Name     string
}

// ListByCategoryReq — запрос страницы продуктов одной категории. Page считается с нуля.
type ListByCategoryReq struct {
	Category string
	Page     int
	Size     int
}

// ProductListRes — страница продуктов.
// TotalPages и TotalElements посчитаны по всем продуктам категории, а не только по странице.
type ProductListRes struct {
	Items         []*domain.Product
	TotalPages    int
	TotalElements int64
	Page          int
}

// REPOSITORIES

// SortOrder — порядок сортировки выборки по категории.
type SortOrder int

const (
	// SortByCategoryAsc — по возрастанию категории, при равенстве по идентификатору.
	SortByCategoryAsc SortOrder = iota
)

// ProductPageQuery — параметры постраничной выборки для хранилища.
type ProductPageQuery struct {
	Category string
	Page     int
	Size     int
	Sort     SortOrder
}

// Offset возвращает число пропускаемых записей.
// При переполнении значение насыщается до math.MaxInt64, такая страница заведомо пуста.
func (q ProductPageQuery) Offset() int64 {
	if q.Page <= 0 || q.Size <= 0 {
		return 0
	}

	if int64(q.Page) > math.MaxInt64/int64(q.Size) {
		return math.MaxInt64
	}

	return int64(q.Page) * int64(q.Size)
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
	Failed     OutboxStatus = "failed"
)

type OutboxEventType string

const (
	ProductCreated OutboxEventType = "product.created"
	ProductUpdated OutboxEventType = "product.updated"
	ProductDeleted OutboxEventType = "product.deleted"
)

// OutboxEvent — событие изменения каталога, ожидающее публикации в брокер.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	ProductID   int64
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// INFRASTRUCTURE

// WriteRawMessageReq — уже сериализованное сообщение для брокера.
type WriteRawMessageReq struct {
	ProductID int64
	EventType OutboxEventType
	Payload   []byte
}

// MAPPERS

// NewProductListRes собирает страницу и считает число страниц по общему количеству элементов.
func NewProductListRes(items []*domain.Product, totalElements int64, page int, size int) *ProductListRes {
	if items == nil {
		items = make([]*domain.Product, 0)
	}

	return &ProductListRes{
		Items:         items,
		TotalPages:    TotalPages(totalElements, size),
		TotalElements: totalElements,
		Page:          page,
	}
}

// TotalPages возвращает ceil(total/size); для пустой выборки — 0.
func TotalPages(totalElements int64, size int) int {
	if size <= 0 || totalElements <= 0 {
		return 0
	}

	return int((totalElements + int64(size) - 1) / int64(size))
}

func NewCreateProductReq(category, name string) *CreateProductReq {
	return &CreateProductReq{Category: category, Name: name}
}

func NewUpdateProductReq(id int64, category, name string) *UpdateProductReq {
	return &UpdateProductReq{ID: id, Category: category, Name: name}
}

func NewListByCategoryReq(category string, page, size int) *ListByCategoryReq {
	return &ListByCategoryReq{Category: category, Page: page, Size: size}
}

func NewWriteRawMessageReq(productID int64, eventType OutboxEventType, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ProductID: productID,
		EventType: eventType,
		Payload:   payload,
	}
}
