package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/simaogato/wealthflow-allocator/internal/app"
	"github.com/simaogato/wealthflow-allocator/internal/config"
	"github.com/simaogato/wealthflow-allocator/internal/logger"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("ALLOC_CONFIG"), "Path to an optional YAML config file")
	flag.Parse()

	// 1. Configuration and logging
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database, repositories and services
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	// 3. Seed the ledger on first start
	if err := a.Seed(ctx); err != nil {
		log.Fatal("Failed to seed wallet allocations", zap.Error(err))
	}

	if cfg.Provider.APIKey == "" {
		log.Warn("No price provider API key configured; computations will fail until one is set")
	}

	// 4. Serve HTTP and gRPC until SIGINT or SIGTERM
	if err := a.Run(ctx); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
