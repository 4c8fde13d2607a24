package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/product-catalog/internal/cfg"
	"github.com/DRSN-tech/product-catalog/internal/repository/memory"
	"github.com/DRSN-tech/product-catalog/internal/repository/pgdb"
	"github.com/DRSN-tech/product-catalog/internal/usecase"
	"github.com/DRSN-tech/product-catalog/pkg/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeProducer struct {
	mu       sync.Mutex
	failures map[int64][]error
	sent     []*usecase.WriteRawMessageReq
}

func (f *fakeProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if errs := f.failures[req.ProductID]; len(errs) > 0 {
		f.failures[req.ProductID] = errs[1:]
		return errs[0]
	}

	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeProducer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestWorker(t *testing.T, repo *memory.OutboxRepo, producer *fakeProducer, batchSize int) *OutboxWorker {
	t.Helper()

	w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, &cfg.OutboxCfg{
		BatchSize:    batchSize,
		PollInterval: time.Hour,
		MaxAttempts:  3,
		RetryBase:    time.Second,
		RetryMax:     10 * time.Second,
	}, prometheus.NewRegistry(), "")
	w.backoff.Factor = 0
	return w
}

func createEvents(t *testing.T, repo *memory.OutboxRepo, productIDs ...int64) {
	t.Helper()
	for _, id := range productIDs {
		_, err := repo.Create(context.Background(), &usecase.OutboxEvent{
			EventID:   fmt.Sprintf("ev-%d", id),
			EventType: usecase.ProductCreated,
			ProductID: id,
			Payload:   []byte("p"),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func statusOf(repo *memory.OutboxRepo, productID int64) usecase.OutboxStatus {
	for _, ev := range repo.Events() {
		if ev.ProductID == productID {
			return ev.Status
		}
	}
	return ""
}

func TestOutboxWorker_ProcessBatchPublishes(t *testing.T) {
	repo := memory.NewOutboxRepo()
	producer := &fakeProducer{}
	w := newTestWorker(t, repo, producer, 2)
	ctx := context.Background()

	createEvents(t, repo, 1, 2, 3)

	hasMore, err := w.processBatch(ctx)
	if err != nil || !hasMore {
		t.Fatalf("first batch = %v, %v; want more", hasMore, err)
	}
	hasMore, err = w.processBatch(ctx)
	if err != nil || hasMore {
		t.Fatalf("second batch = %v, %v; want done", hasMore, err)
	}

	if producer.sentCount() != 3 {
		t.Fatalf("sent = %d, want 3", producer.sentCount())
	}
	for _, id := range []int64{1, 2, 3} {
		if st := statusOf(repo, id); st != usecase.Processed {
			t.Errorf("product %d event status = %s, want processed", id, st)
		}
	}
	if got := testutil.ToFloat64(w.events.WithLabelValues(resultPublished)); got != 3 {
		t.Errorf("published counter = %v, want 3", got)
	}
}

func TestOutboxWorker_RetriesTemporaryFailures(t *testing.T) {
	repo := memory.NewOutboxRepo()
	producer := &fakeProducer{failures: map[int64][]error{
		1: {errors.New("dial tcp: connection refused")},
	}}
	w := newTestWorker(t, repo, producer, 10)
	ctx := context.Background()

	now := time.Now()
	w.now = func() time.Time { return now }

	createEvents(t, repo, 1)

	if _, err := w.processBatch(ctx); err != nil {
		t.Fatal(err)
	}
	if st := statusOf(repo, 1); st != usecase.Pending {
		t.Fatalf("status after temporary failure = %s, want pending", st)
	}
	if reason := repo.LastError(repo.Events()[0].ID); reason == "" {
		t.Error("reschedule reason must be recorded")
	}

	// Событие отложено на RetryBase и пока не забирается.
	if _, err := w.processBatch(ctx); err != nil {
		t.Fatal(err)
	}
	if producer.sentCount() != 0 {
		t.Fatal("rescheduled event must not be sent before its time")
	}
	if got := testutil.ToFloat64(w.events.WithLabelValues(resultRetried)); got != 1 {
		t.Errorf("retried counter = %v, want 1", got)
	}
}

func TestOutboxWorker_RetryThenPublish(t *testing.T) {
	repo := memory.NewOutboxRepo()
	producer := &fakeProducer{failures: map[int64][]error{
		1: {errors.New("broker not available")},
	}}
	w := newTestWorker(t, repo, producer, 10)
	// Повтор доступен сразу: время воркера отстаёт от времени хранилища.
	w.now = func() time.Time { return time.Now().Add(-time.Hour) }

	createEvents(t, repo, 1)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := w.processBatch(ctx); err != nil {
			t.Fatal(err)
		}
	}

	if st := statusOf(repo, 1); st != usecase.Processed {
		t.Fatalf("status = %s, want processed", st)
	}
	if producer.sentCount() != 1 {
		t.Fatalf("sent = %d, want 1", producer.sentCount())
	}
}

func TestOutboxWorker_FailsPermanentErrors(t *testing.T) {
	repo := memory.NewOutboxRepo()
	producer := &fakeProducer{failures: map[int64][]error{
		1: {errors.New("message size too large")},
	}}
	w := newTestWorker(t, repo, producer, 10)

	createEvents(t, repo, 1, 2)

	if _, err := w.processBatch(context.Background()); err != nil {
		t.Fatal(err)
	}

	if st := statusOf(repo, 1); st != usecase.Failed {
		t.Errorf("product 1 status = %s, want failed", st)
	}
	if st := statusOf(repo, 2); st != usecase.Processed {
		t.Errorf("product 2 status = %s, want processed", st)
	}
	if got := testutil.ToFloat64(w.events.WithLabelValues(resultFailed)); got != 1 {
		t.Errorf("failed counter = %v, want 1", got)
	}
}

func TestOutboxWorker_GivesUpAfterMaxAttempts(t *testing.T) {
	repo := memory.NewOutboxRepo()
	timeout := errors.New("i/o timeout")
	producer := &fakeProducer{failures: map[int64][]error{
		1: {timeout, timeout, timeout, timeout},
	}}
	w := newTestWorker(t, repo, producer, 10)
	w.now = func() time.Time { return time.Now().Add(-time.Hour) }

	createEvents(t, repo, 1)

	for i := 0; i < 5; i++ {
		if _, err := w.processBatch(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	if st := statusOf(repo, 1); st != usecase.Failed {
		t.Fatalf("status = %s, want failed", st)
	}
	if attempts := repo.Events()[0].Attempts; attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if producer.sentCount() != 0 {
		t.Errorf("sent = %d, want 0", producer.sentCount())
	}
}

func TestOutboxWorker_StartDrainsAndStops(t *testing.T) {
	repo := memory.NewOutboxRepo()
	producer := &fakeProducer{}
	w := newTestWorker(t, repo, producer, 10)

	createEvents(t, repo, 1, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for producer.sentCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if producer.sentCount() != 2 {
		t.Fatalf("startup drain sent %d events, want 2", producer.sentCount())
	}

	createEvents(t, repo, 3)
	w.Notify()

	deadline = time.Now().Add(2 * time.Second)
	for producer.sentCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if producer.sentCount() != 3 {
		t.Fatalf("notified drain sent %d events, want 3", producer.sentCount())
	}

	w.Stop()
	w.Stop()
}

func TestOutboxWorker_HandleNotification(t *testing.T) {
	w := newTestWorker(t, memory.NewOutboxRepo(), &fakeProducer{}, 10)

	if w.handleNotification(nil) {
		t.Error("nil notification must be ignored")
	}
	if w.handleNotification(&pgconn.Notification{Channel: "other"}) {
		t.Error("foreign channel must be ignored")
	}
	select {
	case <-w.wake:
		t.Fatal("worker woken by ignored notification")
	default:
	}

	if !w.handleNotification(&pgconn.Notification{Channel: pgdb.OutboxChannel}) {
		t.Fatalf("notification on %q must wake the worker", pgdb.OutboxChannel)
	}
	select {
	case <-w.wake:
	default:
		t.Fatal("worker not woken")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: errors.New("dial tcp 127.0.0.1:9092: connect: connection refused"), want: true},
		{err: fmt.Errorf("write: %w", context.DeadlineExceeded), want: true},
		{err: errors.New("[10] Message Size Too Large"), want: false},
		{err: errors.New("Leader Not Available"), want: true},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
