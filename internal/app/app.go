// Package app wires repositories, services and transports from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	grpclib "google.golang.org/grpc"

	grpcadapter "github.com/simaogato/wealthflow-allocator/internal/adapter/grpc"
	"github.com/simaogato/wealthflow-allocator/internal/adapter/csvfile"
	"github.com/simaogato/wealthflow-allocator/internal/adapter/httpapi"
	"github.com/simaogato/wealthflow-allocator/internal/adapter/pricefeed/coinmarketcap"
	"github.com/simaogato/wealthflow-allocator/internal/adapter/repository/sqlrepo"
	"github.com/simaogato/wealthflow-allocator/internal/config"
	cronrunner "github.com/simaogato/wealthflow-allocator/internal/cron"
	"github.com/simaogato/wealthflow-allocator/internal/metrics"
	"github.com/simaogato/wealthflow-allocator/internal/usecase/allocation"
	"github.com/simaogato/wealthflow-allocator/internal/usecase/history"
	"github.com/simaogato/wealthflow-allocator/internal/usecase/ledger"
	"github.com/simaogato/wealthflow-allocator/internal/usecase/seeder"
	"github.com/simaogato/wealthflow-allocator/internal/usecase/snapshot"
)

const shutdownTimeout = 10 * time.Second

// App holds every long-lived component of the allocator
type App struct {
	Config config.Config
	Logger *zap.Logger
	DB     *sqlrepo.DB

	Ledger      *ledger.LedgerService
	History     *history.HistoryService
	Allocations *allocation.AllocationService
	Seeder      *seeder.LedgerSeeder

	HTTP *http.Server
	GRPC *grpclib.Server
}

// Option customizes New
type Option func(*options)

type options struct {
	providerOpts []coinmarketcap.Option
}

// WithProviderOptions passes options to the CoinMarketCap client
func WithProviderOptions(opts ...coinmarketcap.Option) Option {
	return func(o *options) { o.providerOpts = append(o.providerOpts, opts...) }
}

// New opens the database, applies the schema and builds every service.
// Nothing listens until Serve or Run is called.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// 1. Database
	db, err := sqlrepo.NewDB(ctx, cfg.DB.URL, sqlrepo.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// 2. Repositories
	ledgerRepo := sqlrepo.NewLedgerRepository(db)
	historyRepo := sqlrepo.NewHistoryRepository(db)
	recordRepo := sqlrepo.NewAllocationRepository(db)

	// 3. Adapters
	targets := csvfile.NewTargetLoader(cfg.Allocation.BarcaAllocationsPath, cfg.Allocation.TargetsCacheTTL, logger)
	provider := coinmarketcap.NewClient(coinmarketcap.Config{
		BaseURL:   cfg.Provider.BaseURL,
		Limit:     cfg.Provider.Limit,
		Timeout:   cfg.Provider.Timeout,
		RateLimit: cfg.Provider.RateLimit,
		Burst:     cfg.Provider.Burst,
	}, logger, o.providerOpts...)

	// 4. Services
	ledgerService := ledger.NewLedgerService(ledgerRepo, logger)
	historyService := history.NewHistoryService(historyRepo)
	allocationService := allocation.NewAllocationService(
		provider, targets, ledgerRepo, recordRepo,
		snapshot.NewWriter(historyRepo, logger),
		allocation.Settings{APIKey: cfg.Provider.APIKey, MarketContext: cfg.Allocation.CurrentMarket},
		logger,
	)

	// 5. Transports
	metrics.MustRegisterMetrics()
	router := httpapi.NewRouter(&httpapi.Handler{
		Allocations: allocationService,
		History:     historyService,
		Ledger:      ledgerService,
	}, logger)

	return &App{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Ledger:      ledgerService,
		History:     historyService,
		Allocations: allocationService,
		Seeder:      seeder.NewLedgerSeeder(ledgerRepo, ledgerService, cfg.Allocation.WalletAllocationsPath, logger),
		HTTP: &http.Server{
			Addr:         cfg.Server.HTTPAddr(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		GRPC: grpcadapter.NewGRPCServer(
			grpcadapter.NewServer(allocationService, historyService, ledgerService),
			logger,
		),
	}, nil
}

// Seed imports the wallet file into an empty ledger when enabled
func (a *App) Seed(ctx context.Context) error {
	if !a.Config.Allocation.SeedOnStartup {
		return nil
	}
	if _, err := a.Seeder.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed wallet allocations: %w", err)
	}
	return nil
}

// Run listens on the configured addresses and serves until ctx is done
func (a *App) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", a.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.HTTP.Addr, err)
	}
	grpcLis, err := net.Listen("tcp", a.Config.Server.GRPCAddr)
	if err != nil {
		httpLis.Close()
		return fmt.Errorf("failed to listen on %s: %w", a.Config.Server.GRPCAddr, err)
	}
	return a.Serve(ctx, httpLis, grpcLis)
}

// Serve runs the HTTP and gRPC servers plus the scheduler on the given
// listeners. When ctx is done every server is shut down gracefully.
func (a *App) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	var runner *cronrunner.Runner
	if a.Config.Cron.Enabled {
		runner = cronrunner.New(a.Logger, gctx)
		_, err := runner.Add("compute", a.Config.Cron.Compute, func(ctx context.Context) error {
			_, err := a.Allocations.ComputeAndRecord(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", a.Config.Cron.Compute, err)
		}
		runner.Start()
	}

	g.Go(func() error {
		a.Logger.Info("HTTP server listening", zap.String("addr", httpLis.Addr().String()))
		if err := a.HTTP.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.Logger.Info("gRPC server listening", zap.String("addr", grpcLis.Addr().String()))
		if err := a.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpclib.ErrServerStopped) {
			return fmt.Errorf("gRPC server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if runner != nil {
			runner.Stop()
		}
		a.GRPC.GracefulStop()
		if err := a.HTTP.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP shutdown failed: %w", err)
		}
		a.Logger.Info("Servers stopped")
		return nil
	})

	return g.Wait()
}

// Close releases the database
func (a *App) Close() error {
	return a.DB.Close()
}
