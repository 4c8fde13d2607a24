package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/product-catalog/internal/cfg"
	v1Grpc "github.com/DRSN-tech/product-catalog/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/product-catalog/internal/delivery/v1/http"
	"github.com/DRSN-tech/product-catalog/internal/infrastructure/kafka"
	"github.com/DRSN-tech/product-catalog/internal/repository/memory"
	"github.com/DRSN-tech/product-catalog/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/product-catalog/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/product-catalog/internal/usecase"
	"github.com/DRSN-tech/product-catalog/pkg/closer"
	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/DRSN-tech/product-catalog/pkg/logger"
	"github.com/DRSN-tech/product-catalog/pkg/postgres"
	"github.com/DRSN-tech/product-catalog/pkg/telemetry"
	"github.com/DRSN-tech/product-catalog/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	forcedCloseTimeout = 3 * time.Second
	ensureTopicTimeout = 10 * time.Second
)

// storage — репозитории, выбранные по CATALOG_STORAGE.
type storage struct {
	products  usecase.ProductRepository
	outbox    usecase.OutboxRepository
	txManager usecase.TxManager
	dsn       string // пустая строка — LISTEN/NOTIFY недоступен
}

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	closer   *closer.Closer
	registry *prometheus.Registry

	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	worker  *kafka.OutboxWorker

	workerCtx    context.Context
	workerCancel context.CancelFunc
}

// NewApp собирает зависимости. Ресурсы, открытые до ошибки, закрываются здесь же.
func NewApp(cfg *config.Config, log logger.Logger) (_ *App, err error) {
	a := &App{
		cfg:      cfg,
		logger:   log,
		closer:   closer.NewCloser(forcedCloseTimeout),
		registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			_ = a.closer.Close(context.Background())
		}
	}()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tel, err := telemetry.New(context.Background(), cfg.Telemetry, a.registry, log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("telemetry", tel.Shutdown)

	store, err := a.initStorage()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	productUC := usecase.NewProductUC(store.products, store.outbox, store.txManager, log.With("component", "usecase"))

	if err := a.initOutbox(store); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log.With("component", "grpc"))
	a.grpcSrv.RegisterServices(productUC)

	r := chi.NewRouter()
	v1Http.NewRouter(r, log.With("component", "http"), a.registry).Init(productUC, cfg.Http)

	handler := otelhttp.NewHandler(r, "http-server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
	)
	a.httpSrv = v1Http.NewServer(handler, cfg.Http)

	return a, nil
}

func (a *App) initStorage() (*storage, error) {
	if a.cfg.Storage == config.StorageMemory {
		a.logger.Warnf("CATALOG_STORAGE=memory: catalog data is not persisted")
		return &storage{
			products:  memory.NewProductRepo(),
			outbox:    memory.NewOutboxRepo(),
			txManager: memory.NewTxManager(),
		}, nil
	}

	db, err := initPGDB(a.logger.With("component", "postgres"), a.cfg)
	if err != nil {
		return nil, err
	}
	a.closer.AddSimple("postgres", db.Close)

	return &storage{
		products:  pgdb.NewProductRepo(db.Pool, pgdbConv.NewProductConverter()),
		outbox:    pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverter()),
		txManager: tr.NewManager(db.Pool),
		dsn:       db.Dsn,
	}, nil
}

// initOutbox запускает публикацию событий в Kafka. Без брокеров события копятся в outbox.
func (a *App) initOutbox(store *storage) error {
	if !a.cfg.Kafka.Enabled() {
		a.logger.Warnf("KAFKA_BROKERS is empty: outbox events will not be published")
		return nil
	}

	producer, err := kafka.NewProducer(a.logger.With("component", "kafka"), a.cfg.Kafka)
	if err != nil {
		return err
	}
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })

	if err := producer.EnsureTopic(ensureTopicTimeout); err != nil {
		a.logger.Warnf("failed to ensure kafka topic: %v", err)
	}

	a.worker = kafka.NewOutboxWorker(store.outbox, a.logger.With("component", "outbox"), producer, a.cfg.Outbox, a.registry, store.dsn)
	a.workerCtx, a.workerCancel = context.WithCancel(context.Background())
	a.closer.AddSimple("outbox worker", func() {
		a.workerCancel()
		a.worker.Stop()
	})

	return nil
}

// Run запускает серверы и блокируется до сигнала завершения или падения одного из серверов.
func (a *App) Run() error {
	if a.worker != nil {
		a.worker.Start(a.workerCtx)
	}

	errCh := make(chan error, 2)

	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server", err)
		}
	}()
	a.closer.Add("gRPC server", a.grpcSrv.Stop)

	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("HTTP server", err)
		}
	}()
	a.closer.Add("HTTP server", a.httpSrv.Stop)

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Http.ShutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
