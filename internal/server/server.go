// internal/server/server.go

// Package server assembles the HTTP routers of the catalog and account
// services.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"coursemarket/internal/account"
	"coursemarket/internal/catalog"
	"coursemarket/internal/httpx"
	"coursemarket/internal/logger"
	"coursemarket/internal/purchase"
	"coursemarket/internal/upsell"
)

func base(log *logger.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLog(log))
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func requestLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// NewCatalogRouter serves browsing, item lookup, upsell offers and contact links.
func NewCatalogRouter(svc catalog.Service, linker catalog.ContactLinker, log *logger.Logger) http.Handler {
	r := base(log)
	catalog.NewHandler(svc, linker).Routes(r)
	upsell.NewHandler(svc).Routes(r)
	return r
}

// NewAccountRouter serves accounts and their purchases.
func NewAccountRouter(accounts account.Service, purchases purchase.Service, log *logger.Logger) http.Handler {
	r := base(log)
	account.NewHandler(accounts).Routes(r)
	purchase.NewHandler(purchases).Routes(r)
	return r
}

// Run serves h on addr until ctx is cancelled, then shuts down within timeout.
func Run(ctx context.Context, addr string, h http.Handler, timeout time.Duration, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "addr", addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
