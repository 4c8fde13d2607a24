package usecase

import (
	"time"

	"github.com/DRSN-tech/product-catalog/internal/domain"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewProductEvent формирует outbox-событие. Payload — сериализованный google.protobuf.Struct
// с полным состоянием продукта на момент изменения.
func NewProductEvent(eventType OutboxEventType, product *domain.Product, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.NewString()

	payload, err := structpb.NewStruct(map[string]any{
		"event_id":    eventID,
		"event_type":  string(eventType),
		"product_id":  product.ID(),
		"category":    product.Category(),
		"name":        product.Name(),
		"occurred_at": now.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}

	data, err := proto.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		ProductID: product.ID(),
		Payload:   data,
		Status:    Pending,
		CreatedAt: now,
	}, nil
}

// DecodeProductEvent разбирает payload события обратно в Struct.
func DecodeProductEvent(payload []byte) (*structpb.Struct, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(payload, &s); err != nil {
		return nil, err
	}

	return &s, nil
}
