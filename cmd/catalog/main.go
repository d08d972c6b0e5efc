// cmd/catalog/main.go
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"coursemarket/internal/catalog"
	"coursemarket/internal/config"
	"coursemarket/internal/contact"
	"coursemarket/internal/logger"
	"coursemarket/internal/observability"
	"coursemarket/internal/server"
)

func main() {
	cfg, err := config.Load("8081")
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

	shutdownTracing := observability.InitTracing(ctx, log, cfg.OTelEnabled, "catalog", cfg.Env)
	defer shutdownTracing(context.Background())

	var provider catalog.Provider
	switch cfg.CatalogSource {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to open database", "error", err)
		}
		defer db.Close()
		if _, err := db.ExecContext(ctx, catalog.CatalogSchema); err != nil {
			log.Fatal("failed to create catalog tables", "error", err)
		}
		provider = catalog.NewPostgresProvider(db)
	default:
		provider = catalog.NewFileProvider(cfg.CatalogFile)
	}

	svc, err := catalog.NewService(ctx, provider, log)
	if err != nil {
		log.Fatal("failed to load catalog", "source", cfg.CatalogSource, "error", err)
	}

	// SIGHUP reloads the catalog without a restart
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := svc.Reload(ctx); err != nil {
					log.Error("catalog reload failed, keeping previous catalog", "error", err)
				}
			}
		}
	}()

	router := server.NewCatalogRouter(svc, contact.NewWhatsApp(cfg.ContactPhone), log)
	if err := server.Run(ctx, ":"+cfg.Port, router, cfg.ShutdownTimeout, log.With("service", "catalog")); err != nil {
		log.Fatal("catalog server failed", "error", err)
	}
}
