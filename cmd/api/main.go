// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"coursemarket/internal/config"
	"coursemarket/internal/logger"
	"coursemarket/internal/server"
)

func main() {
	cfg, err := config.Load("8080")
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, err := server.NewGateway(cfg.CatalogServiceURL, cfg.AccountServiceURL, log)
	if err != nil {
		log.Fatal("invalid gateway configuration", "error", err)
	}
	if err := server.Run(ctx, ":"+cfg.Port, gw, cfg.ShutdownTimeout, log.With("service", "gateway")); err != nil {
		log.Fatal("gateway failed", "error", err)
	}
}
