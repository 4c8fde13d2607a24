package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/product-catalog/internal/usecase"
	"github.com/jimlawless/whereami"
)

type outboxRecord struct {
	event               usecase.OutboxEvent
	availableAt         time.Time
	processingStartedAt time.Time
	lastError           string
}

// OutboxRepo — очередь событий в памяти с той же семантикой статусов, что и таблица outbox_events.
type OutboxRepo struct {
	mu     sync.Mutex
	events []*outboxRecord
	nextID int64
	now    func() time.Time
}

func NewOutboxRepo() *OutboxRepo {
	return &OutboxRepo{now: time.Now}
}

func (o *OutboxRepo) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, rec := range o.events {
		if rec.event.EventID == event.EventID {
			return nil, fmt.Errorf("%s: event with id %s already exists", whereami.WhereAmI(), event.EventID)
		}
	}

	o.nextID++
	rec := &outboxRecord{event: *event, availableAt: o.now()}
	rec.event.ID = o.nextID
	rec.event.Status = usecase.Pending
	if rec.event.CreatedAt.IsZero() {
		rec.event.CreatedAt = o.now()
	}
	o.events = append(o.events, rec)

	cp := rec.event
	return &cp, nil
}

func (o *OutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	res := make([]*usecase.OutboxEvent, 0, limit)
	for _, rec := range o.events {
		if len(res) == limit {
			break
		}
		if rec.event.Status != usecase.Pending || rec.availableAt.After(now) {
			continue
		}

		rec.event.Status = usecase.Processing
		rec.event.Attempts++
		rec.processingStartedAt = now
		cp := rec.event
		res = append(res, &cp)
	}

	return res, nil
}

func (o *OutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if rec := o.find(id); rec != nil && rec.event.Status == usecase.Processing {
		now := o.now()
		rec.event.Status = usecase.Processed
		rec.event.ProcessedAt = &now
	}

	return nil
}

func (o *OutboxRepo) Reschedule(_ context.Context, id int64, availableAt time.Time, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if rec := o.find(id); rec != nil && rec.event.Status == usecase.Processing {
		rec.event.Status = usecase.Pending
		rec.availableAt = availableAt
		rec.lastError = reason
	}

	return nil
}

func (o *OutboxRepo) MarkAsFailed(_ context.Context, id int64, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if rec := o.find(id); rec != nil && rec.event.Status == usecase.Processing {
		rec.event.Status = usecase.Failed
		rec.lastError = reason
	}

	return nil
}

func (o *OutboxRepo) ReleaseStuck(_ context.Context, olderThan time.Duration) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	deadline := o.now().Add(-olderThan)
	var released int64
	for _, rec := range o.events {
		if rec.event.Status == usecase.Processing && rec.processingStartedAt.Before(deadline) {
			rec.event.Status = usecase.Pending
			released++
		}
	}

	return released, nil
}

// LastError возвращает причину последней неудачной публикации события.
func (o *OutboxRepo) LastError(id int64) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	if rec := o.find(id); rec != nil {
		return rec.lastError
	}

	return ""
}

// Events возвращает копии всех событий в порядке создания.
func (o *OutboxRepo) Events() []usecase.OutboxEvent {
	o.mu.Lock()
	defer o.mu.Unlock()

	res := make([]usecase.OutboxEvent, 0, len(o.events))
	for _, rec := range o.events {
		res = append(res, rec.event)
	}

	return res
}

func (o *OutboxRepo) find(id int64) *outboxRecord {
	for _, rec := range o.events {
		if rec.event.ID == id {
			return rec
		}
	}

	return nil
}
