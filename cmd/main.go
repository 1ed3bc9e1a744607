package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/catalog"
	"github.com/fjod/go_cart/pos-terminal/internal/checkout"
	posgrpc "github.com/fjod/go_cart/pos-terminal/internal/grpc"
	h "github.com/fjod/go_cart/pos-terminal/internal/http"
	"github.com/fjod/go_cart/pos-terminal/internal/outbox"
	"github.com/fjod/go_cart/pos-terminal/internal/receipt"
	"github.com/fjod/go_cart/pos-terminal/internal/shift"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := loadConfig()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("terminal stopped with error", zap.Error(err))
	}
	logger.Info("terminal stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return zcfg.Build()
}

func run(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	bg := newWorkers(ctx)

	// Backend (system of record)
	client := backend.NewClient(backend.Config{
		BaseURL: cfg.BackendURL,
		Token:   cfg.BackendToken,
		Timeout: cfg.BackendTimeout,
	}, logger.Named("backend"))

	// Product catalog behind Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	products := catalog.New(client, catalog.NewRedisCache(redisClient, cfg.ProductCacheTTL), logger.Named("catalog"))

	// Shift journal
	shiftStore, err := shift.NewSQLiteStore(cfg.ShiftDBPath)
	if err != nil {
		return fmt.Errorf("failed to open shift journal: %w", err)
	}
	defer shiftStore.Close()
	if err := shiftStore.RunMigrations(cfg.ShiftMigrationsPath); err != nil {
		return fmt.Errorf("failed to migrate shift journal: %w", err)
	}
	shifts := shift.NewManager(client, shiftStore, cfg.OperatorID, logger.Named("shift"))

	reporter := posgrpc.NewHealthReporter(logger.Named("health"))
	shifts.Subscribe(reporter)

	// Receipts: printer plus optional archive
	renderer := receipt.NewRenderer(receipt.Header{
		StoreName: cfg.StoreName,
		Address:   cfg.StoreAddress,
		Phone:     cfg.StorePhone,
		TaxID:     cfg.StoreTaxID,
	}, cfg.Currency, cfg.ReceiptWidth, cfg.OperatorName)

	printerOut, err := openPrinter(cfg.PrinterPath)
	if err != nil {
		return fmt.Errorf("failed to open receipt printer: %w", err)
	}
	defer printerOut.Close()
	sinks := receipt.Fanout{receipt.NewWriterPrinter(printerOut)}

	var archive h.ReceiptArchive
	if cfg.MongoURI != "" {
		mongoDB, err := receipt.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer func() { _ = mongoDB.Client().Disconnect(context.Background()) }()

		a := receipt.NewArchive(mongoDB)
		if err := a.CreateIndexes(ctx); err != nil {
			return fmt.Errorf("failed to create receipt indexes: %w", err)
		}
		sinks = append(sinks, a)
		archive = a
		logger.Info("receipt archive enabled", zap.String("db", cfg.MongoDBName))
	}

	deps := checkout.Deps{
		Cart:      cart.New(),
		Shifts:    shifts,
		Customers: client,
		Invoices:  client,
		Renderer:  renderer,
		Receipts:  sinks,
		Catalog:   products,
	}

	// Outbox and event streaming
	if cfg.PostgresHost != "" && len(cfg.KafkaBrokers) > 0 {
		cred := &outbox.Credentials{
			Host:              cfg.PostgresHost,
			Port:              cfg.PostgresPort,
			User:              cfg.PostgresUser,
			Password:          cfg.PostgresPassword,
			DBName:            cfg.PostgresDB,
			MigrationsDirPath: cfg.OutboxMigrationsPath,
		}
		repo, err := outbox.NewRepository(cred)
		if err != nil {
			return fmt.Errorf("failed to connect to outbox database: %w", err)
		}
		defer repo.Close()
		if err := repo.RunMigrations(cred); err != nil {
			return fmt.Errorf("failed to migrate outbox: %w", err)
		}

		recorder := outbox.NewRecorder(repo, cfg.TerminalID, logger.Named("outbox"))
		shifts.Subscribe(recorder)
		deps.Events = recorder

		poller := outbox.NewPoller(repo, cfg.KafkaTopic, logger.Named("outbox"), cfg.KafkaBrokers...)
		defer poller.Close()
		bg.Go(poller.Run)

		invalidator := catalog.NewInvalidator(products, cfg.KafkaTopic, "pos-terminal-"+cfg.TerminalID,
			logger.Named("catalog"), cfg.KafkaBrokers...)
		defer invalidator.Close()
		bg.Go(invalidator.Run)

		logger.Info("event streaming enabled", zap.String("topic", cfg.KafkaTopic))
	}
	// deferred after every resource, so workers are stopped before anything they use is closed
	defer bg.Stop()

	orchestrator := checkout.New(deps, cfg.TerminalID, logger.Named("checkout"))

	// Initial health status; a session already in the journal is not re-announced
	if session, err := shifts.Current(ctx); err == nil {
		reporter.ShiftChanged(ctx, *session)
	} else if !errors.Is(err, shift.ErrNoActiveShift) {
		logger.Warn("could not read current shift", zap.Error(err))
	}

	// gRPC health
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	grpcServer := posgrpc.NewServer(reporter, logger.Named("grpc"))
	go func() {
		logger.Info("gRPC health listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()
	defer grpcServer.GracefulStop()

	// HTTP API
	handlers := h.Handlers{
		Cart:     h.NewCartHandler(deps.Cart, products, cfg.RequestTimeout, logger.Named("http")),
		Shift:    h.NewShiftHandler(shifts, cfg.RequestTimeout, logger.Named("http")),
		Checkout: h.NewCheckoutHandler(orchestrator, cfg.RequestTimeout, logger.Named("http")),
		Receipt:  h.NewReceiptHandler(renderer, archive, client, cfg.RequestTimeout, logger.Named("http")),
	}
	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewRouter(handlers, h.RouterConfig{
			RequestTimeout:     cfg.RequestTimeout,
			MaxRequestBodySize: cfg.MaxRequestBody,
			AuthToken:          cfg.APIToken,
		}, logger.Named("http")),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("POS terminal starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("terminal_id", cfg.TerminalID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	logger.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openPrinter appends to the printer device or file. Empty path prints to stdout.
func openPrinter(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
}
