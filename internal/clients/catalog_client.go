// internal/clients/catalog_client.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"coursemarket/internal/catalog"
)

// CatalogClient reads the catalog from a running catalog service. It
// satisfies catalog.Provider.
type CatalogClient struct {
	baseURL string
	http    *http.Client
}

var _ catalog.Provider = (*CatalogClient)(nil)

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Snapshot fetches GET /snapshot.
func (c *CatalogClient) Snapshot(ctx context.Context) (catalog.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/snapshot", nil)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("fetch catalog snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return catalog.Snapshot{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var snap catalog.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return catalog.Snapshot{}, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	return snap, nil
}
