package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/agrichain/agrichain/internal/bus"
	"github.com/agrichain/agrichain/internal/config"
	"github.com/agrichain/agrichain/internal/registry/product"
	"github.com/agrichain/agrichain/internal/registry/wishlist"
	"github.com/agrichain/agrichain/internal/repository"
	"github.com/agrichain/agrichain/internal/repository/localstore"
	"github.com/agrichain/agrichain/internal/repository/memstore"
	"github.com/agrichain/agrichain/internal/repository/mongodb"
	"github.com/agrichain/agrichain/internal/repository/sheets"
	"github.com/agrichain/agrichain/internal/scheduler"
	"github.com/agrichain/agrichain/internal/server/handlers"
	"github.com/agrichain/agrichain/internal/server/router"
	"github.com/agrichain/agrichain/internal/service/dashboard"
	"github.com/agrichain/agrichain/pkg/clients/backend"
	"github.com/agrichain/agrichain/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var store repository.KeyValueStore
	switch cfg.Storage.Backend {
	case config.StorageBackendFile:
		fileStore, err := localstore.NewStore(cfg.Storage.Path, baseLogger.Named("repo.localstore"))
		if err != nil {
			baseLogger.Fatal("failed to init file store", zap.Error(err))
		}
		store = fileStore
	case config.StorageBackendMongo:
		mongoStore, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
		}
		defer func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoStore
	case config.StorageBackendMemory:
		baseLogger.Warn("memory storage selected, data will not survive restarts")
		store = memstore.NewStore()
	}

	changeBus := bus.New(baseLogger.Named("bus"))
	productReg := product.NewRegistry(store, changeBus, baseLogger.Named("registry.product"))
	wishlistReg := wishlist.NewRegistry(store, changeBus, baseLogger.Named("registry.wishlist"))

	dashboardSvc := dashboard.NewService(productReg, wishlistReg, baseLogger.Named("svc.dashboard"))
	unwatch := dashboardSvc.Watch(changeBus)
	defer unwatch()
	dashboardSvc.Refresh(context.Background())

	// Ledger export is optional; it only runs with sheets credentials configured.
	var exporter sheets.Exporter
	if cfg.LedgerExportEnabled() {
		ledgerRepo, err := sheets.NewLedgerSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets ledger repository", zap.Error(err))
		}
		exporter = ledgerRepo
		baseLogger.Info("ledger export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, ledger export disabled")
	}

	backendClient := backend.NewClient(cfg.Backend)

	productHandler := handlers.NewProductHandler(productReg, baseLogger.Named("handlers.product"))
	wishlistHandler := handlers.NewWishlistHandler(wishlistReg, baseLogger.Named("handlers.wishlist"))
	orderHandler := handlers.NewOrderHandler(backendClient, baseLogger.Named("handlers.order"))
	engine := router.New(productHandler, wishlistHandler, orderHandler, dashboardSvc, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, dashboardSvc, productReg, exporter, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
