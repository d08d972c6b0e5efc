// cmd/account/main.go
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"coursemarket/internal/account"
	"coursemarket/internal/catalog"
	"coursemarket/internal/clients"
	"coursemarket/internal/config"
	"coursemarket/internal/eventstore"
	"coursemarket/internal/logger"
	"coursemarket/internal/notify"
	"coursemarket/internal/observability"
	"coursemarket/internal/purchase"
	"coursemarket/internal/server"
)

func main() {
	cfg, err := config.Load("8082")
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

	shutdownTracing := observability.InitTracing(ctx, log, cfg.OTelEnabled, "account", cfg.Env)
	defer shutdownTracing(context.Background())

	var (
		repo   account.Repository
		events eventstore.Store
	)
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, keeping accounts in memory")
		repo = account.NewMemoryRepository()
		events = eventstore.NewMemoryStore()
	} else {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to open database", "error", err)
		}
		defer db.Close()

		pgRepo := account.NewPostgresRepository(db)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to prepare accounts table", "error", err)
		}
		pgEvents := eventstore.NewPostgresStore(db)
		if err := pgEvents.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to prepare events table", "error", err)
		}
		repo, events = pgRepo, pgEvents
	}

	remote, err := catalog.NewService(ctx, clients.NewCatalogClient(cfg.CatalogServiceURL), log)
	if err != nil {
		log.Fatal("failed to fetch catalog", "url", cfg.CatalogServiceURL, "error", err)
	}
	catalogSvc := catalog.NewRefreshing(remote, cfg.CatalogRefresh, log)

	// SIGHUP refetches the catalog immediately
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := catalogSvc.Reload(ctx); err != nil {
					log.Error("catalog refetch failed", "error", err)
				}
			}
		}
	}()

	listeners := purchase.Multi{notify.NewLog(log)}
	if cfg.RedisAddr != "" {
		rdb, err := notify.NewRedis(ctx, cfg.RedisAddr, cfg.RedisChannel, log)
		if err != nil {
			log.Fatal("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		listeners = append(listeners, rdb)
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.PurchaseRate)), cfg.PurchaseBurst)
	purchases, err := purchase.NewService(catalogSvc, repo, events, listeners, limiter, log)
	if err != nil {
		log.Fatal("failed to create purchase service", "error", err)
	}

	router := server.NewAccountRouter(account.NewService(repo, log), purchases, log)
	if err := server.Run(ctx, ":"+cfg.Port, router, cfg.ShutdownTimeout, log.With("service", "account")); err != nil {
		log.Fatal("account server failed", "error", err)
	}
}
