// internal/server/gateway.go
package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"coursemarket/internal/logger"
)

// NewGateway proxies /api/v1/catalog to the catalog service and
// /api/v1/accounts to the account service.
func NewGateway(catalogURL, accountURL string, log *logger.Logger) (http.Handler, error) {
	catalogTarget, err := url.Parse(catalogURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog service url: %w", err)
	}
	accountTarget, err := url.Parse(accountURL)
	if err != nil {
		return nil, fmt.Errorf("invalid account service url: %w", err)
	}

	r := base(log)
	r.Handle("/api/v1/catalog/*", http.StripPrefix("/api/v1/catalog", httputil.NewSingleHostReverseProxy(catalogTarget)))
	// the account service mounts its routes under /accounts
	r.Handle("/api/v1/accounts", http.StripPrefix("/api/v1", httputil.NewSingleHostReverseProxy(accountTarget)))
	r.Handle("/api/v1/accounts/*", http.StripPrefix("/api/v1", httputil.NewSingleHostReverseProxy(accountTarget)))
	return r, nil
}
