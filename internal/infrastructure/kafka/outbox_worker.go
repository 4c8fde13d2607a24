package kafka

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/product-catalog/internal/cfg"
	"github.com/DRSN-tech/product-catalog/internal/repository/pgdb"
	"github.com/DRSN-tech/product-catalog/internal/usecase"
	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/DRSN-tech/product-catalog/pkg/jitter"
	"github.com/DRSN-tech/product-catalog/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	listenTimeout    = 30 * time.Second
	reconnectDelay   = 2 * time.Second
	reconnectBackoff = 5 * time.Second
)

const (
	resultPublished = "published"
	resultRetried   = "retried"
	resultFailed    = "failed"
)

// OutboxWorker переносит события из outbox в Kafka.
// Пачка забирается при старте, по NOTIFY в pgdb.OutboxChannel и по таймеру PollInterval.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	cfg       *cfg.OutboxCfg
	backoff   *jitter.Backoff
	events    *prometheus.CounterVec
	wake      chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	dbConnStr string
	now       func() time.Time
}

// NewOutboxWorker создаёт воркер. Пустой dbConnStr отключает LISTEN, остаётся только опрос по таймеру.
func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	cfg *cfg.OutboxCfg,
	reg prometheus.Registerer,
	dbConnStr string,
) *OutboxWorker {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Subsystem: "outbox",
		Name:      "events_total",
		Help:      "Outbox events handled by the worker, by result.",
	}, []string{"result"})

	if reg != nil {
		if err := reg.Register(events); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				events = already.ExistingCollector.(*prometheus.CounterVec)
			} else {
				logger.Warnf("outbox metrics are not registered: %v", err)
			}
		}
	}

	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		cfg:       cfg,
		backoff:   jitter.NewBackoff(cfg.RetryBase, cfg.RetryMax, jitter.DefaultJitter),
		events:    events,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		dbConnStr: dbConnStr,
		now:       time.Now,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	if w.dbConnStr == "" {
		return
	}

	// Запускаем слушатель уведомлений
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

// Stop останавливает воркер и дожидается завершения горутин. Повторный вызов безопасен.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

// Notify будит воркер без ожидания таймера.
func (w *OutboxWorker) Notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *OutboxWorker) run(ctx context.Context) {
	// Обрабатываем "остатки" при старте
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped by context cancellation")
			return
		case <-w.stop:
			w.logger.Infof("Outbox worker stopped")
			return
		case <-ticker.C:
			w.releaseStuck(ctx)
			w.drain(ctx)
		case <-w.wake:
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Errorf(err, "outbox batch processing failed")
			return
		}
		if !hasMore {
			return
		}
	}
}

func (w *OutboxWorker) releaseStuck(ctx context.Context) {
	if w.cfg.StuckTimeout <= 0 {
		return
	}

	released, err := w.repo.ReleaseStuck(ctx, w.cfg.StuckTimeout)
	if err != nil {
		w.logger.Warnf("release stuck outbox events: %v", err)
		return
	}
	if released > 0 {
		w.logger.Warnf("released %d outbox events stuck in processing", released)
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn *pgx.Conn

	connect := func() error {
		var err error
		conn, err = pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err = conn.Exec(ctx, "LISTEN "+pgdb.OutboxChannel); err != nil {
			_ = conn.Close(ctx)
			conn = nil
			return e.Wrap("failed to LISTEN", err)
		}

		w.logger.Infof("Subscribed to '%s' channel", pgdb.OutboxChannel)
		return nil
	}

	if err := connect(); err != nil {
		w.logger.Warnf("Initial connect failed, falling back to polling: %v", err)
		return
	}
	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		if conn == nil {
			if !w.sleep(ctx, reconnectDelay) {
				return
			}
			if err := connect(); err != nil {
				w.logger.Warnf("Reconnect failed: %v", err)
				if !w.sleep(ctx, reconnectBackoff) {
					return
				}
			}
			continue
		}

		waitCtx, cancel := context.WithTimeout(ctx, listenTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}

			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			_ = conn.Close(ctx)
			conn = nil
			continue
		}

		w.handleNotification(notif)
	}
}

// handleNotification будит воркер только на уведомления канала outbox.
func (w *OutboxWorker) handleNotification(notif *pgconn.Notification) bool {
	if notif == nil || notif.Channel != pgdb.OutboxChannel {
		return false
	}

	w.logger.Debugf("Received outbox notification")
	w.Notify()
	return true
}

// sleep ждёт d; false означает, что воркер остановлен.
func (w *OutboxWorker) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-w.stop:
		return false
	case <-t.C:
		return true
	}
}

// processBatch публикует одну пачку; hasMore означает, что пачка была полной и стоит забрать следующую.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize)
	if err != nil {
		return false, err
	}

	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			w.handleFailure(ctx, event, err)
			continue
		}

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
			continue
		}
		w.events.WithLabelValues(resultPublished).Inc()
	}

	return len(events) == w.cfg.BatchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	req := usecase.NewWriteRawMessageReq(event.ProductID, event.EventType, event.Payload)
	if err := w.producer.WriteRawMessage(ctx, req); err != nil {
		return e.Wrap("kafka write", err)
	}

	return nil
}

// handleFailure возвращает событие в очередь с задержкой или помечает его failed,
// если ошибка постоянная или попытки исчерпаны.
func (w *OutboxWorker) handleFailure(ctx context.Context, event *usecase.OutboxEvent, cause error) {
	if isRetryableError(cause) && event.Attempts < w.cfg.MaxAttempts {
		delay := w.backoff.Next(event.Attempts - 1)
		w.logger.Warnf("outbox event %s: temporary failure (attempt %d), retry in %s: %v",
			event.EventID, event.Attempts, delay, cause)

		if err := w.repo.Reschedule(ctx, event.ID, w.now().Add(delay), cause.Error()); err != nil {
			w.logger.Errorf(err, "reschedule outbox event %s", event.EventID)
			return
		}
		w.events.WithLabelValues(resultRetried).Inc()
		return
	}

	w.logger.Errorf(cause, "outbox event %s: giving up after %d attempts", event.EventID, event.Attempts)
	if err := w.repo.MarkAsFailed(ctx, event.ID, cause.Error()); err != nil {
		w.logger.Errorf(err, "mark outbox event %s as failed", event.EventID)
		return
	}
	w.events.WithLabelValues(resultFailed).Inc()
}

type temporary interface {
	Temporary() bool
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var tmp temporary
	if errors.As(err, &tmp) && tmp.Temporary() {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}

	return false
}
