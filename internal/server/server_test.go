package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursemarket/internal/account"
	"coursemarket/internal/catalog"
	"coursemarket/internal/clients"
	"coursemarket/internal/contact"
	"coursemarket/internal/eventstore"
	"coursemarket/internal/logger"
	"coursemarket/internal/purchase"
)

func sampleCatalog() catalog.Snapshot {
	return catalog.Snapshot{
		Courses: []catalog.Course{
			{ID: "C1", Title: "Algèbre linéaire", TotalLessons: 12, Lessons: []catalog.Lesson{{ID: "L1", Title: "Vecteurs", Duration: 25}}},
			{ID: "X1", Title: "Anglais des affaires", TotalLessons: 10, Origin: catalog.OriginExternal},
		},
		Packs: []catalog.Pack{{ID: "P1", Title: "Pack Sciences", CourseIDs: []string{"C1"}}},
	}
}

// stack starts both services behind the gateway, the account service reading
// the catalog over HTTP.
func stack(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()

	catalogSvc, err := catalog.NewService(ctx, catalog.StaticProvider(sampleCatalog()), log)
	require.NoError(t, err)
	catalogSrv := httptest.NewServer(NewCatalogRouter(catalogSvc, contact.NewWhatsApp("+33 6 00 00 00 00"), log))
	t.Cleanup(catalogSrv.Close)

	remote, err := catalog.NewService(ctx, clients.NewCatalogClient(catalogSrv.URL), log)
	require.NoError(t, err)
	repo := account.NewMemoryRepository()
	purchases, err := purchase.NewService(remote, repo, eventstore.NewMemoryStore(), nil, nil, log)
	require.NoError(t, err)
	accountSrv := httptest.NewServer(NewAccountRouter(account.NewService(repo, log), purchases, log))
	t.Cleanup(accountSrv.Close)

	gw, err := NewGateway(catalogSrv.URL, accountSrv.URL, log)
	require.NoError(t, err)
	gwSrv := httptest.NewServer(gw)
	t.Cleanup(gwSrv.Close)
	return gwSrv
}

func call(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestEndToEndPurchaseFlow(t *testing.T) {
	gw := stack(t)
	api := gw.URL + "/api/v1"

	var offer struct {
		Options []struct {
			Type       string `json:"type"`
			ItemID     string `json:"item_id"`
			Affordable bool   `json:"affordable"`
		} `json:"options"`
		Layout string `json:"layout"`
	}
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, api+"/catalog/items/L1/upsell?balance=800", "", &offer))
	assert.Equal(t, "tiered", offer.Layout)
	require.Len(t, offer.Options, 3)
	assert.Equal(t, "P1", offer.Options[2].ItemID)
	assert.False(t, offer.Options[2].Affordable)

	var acc account.Account
	require.Equal(t, http.StatusCreated, call(t, http.MethodPost, api+"/accounts", `{"balance":"800"}`, &acc))

	purchases := api + "/accounts/" + acc.ID.String() + "/purchases"
	assert.Equal(t, http.StatusPaymentRequired, call(t, http.MethodPost, purchases, `{"type":"pack","item_id":"P1"}`, nil))
	assert.Equal(t, http.StatusConflict, call(t, http.MethodPost, purchases, `{"type":"course","item_id":"X1"}`, nil))

	var receipt purchase.Receipt
	require.Equal(t, http.StatusCreated, call(t, http.MethodPost, purchases, `{"type":"course","item_id":"C1"}`, &receipt))
	assert.Equal(t, "100", receipt.Account.Wallet.Balance.String())

	var got account.Account
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, api+"/accounts/"+acc.ID.String(), "", &got))
	assert.Equal(t, []string{"C1"}, got.Ownership.Courses.Sorted())

	var contactResp map[string]string
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, api+"/catalog/items/X1/contact", "", &contactResp))
	assert.True(t, strings.HasPrefix(contactResp["url"], "https://wa.me/33600000000?text="))
}

// swappableProvider lets a test change the upstream catalog between reloads.
type swappableProvider struct {
	mu   sync.Mutex
	snap catalog.Snapshot
}

func (p *swappableProvider) Snapshot(context.Context) (catalog.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap, nil
}

func (p *swappableProvider) set(s catalog.Snapshot) {
	p.mu.Lock()
	p.snap = s
	p.mu.Unlock()
}

func TestAccountSideFollowsCatalogReload(t *testing.T) {
	ctx := context.Background()
	log := logger.Nop()

	upstream := &swappableProvider{snap: sampleCatalog()}
	catalogSvc, err := catalog.NewService(ctx, upstream, log)
	require.NoError(t, err)
	catalogSrv := httptest.NewServer(NewCatalogRouter(catalogSvc, contact.NewWhatsApp(""), log))
	t.Cleanup(catalogSrv.Close)

	remote, err := catalog.NewService(ctx, clients.NewCatalogClient(catalogSrv.URL), log)
	require.NoError(t, err)
	repo := account.NewMemoryRepository()
	purchases, err := purchase.NewService(catalog.NewRefreshing(remote, 0, log), repo, eventstore.NewMemoryStore(), nil, nil, log)
	require.NoError(t, err)

	acc, err := account.NewService(repo, log).Open(ctx, decimal.NewFromInt(800))
	require.NoError(t, err)

	_, err = purchases.Purchase(ctx, acc.ID, purchase.Request{Tier: catalog.KindCourse, ItemID: "C2"})
	require.ErrorIs(t, err, catalog.ErrItemNotFound)

	next := sampleCatalog()
	next.Courses = append(next.Courses, catalog.Course{ID: "C2", Title: "Probabilités", TotalLessons: 8})
	upstream.set(next)
	require.NoError(t, catalogSvc.Reload(ctx))

	receipt, err := purchases.Purchase(ctx, acc.ID, purchase.Request{Tier: catalog.KindCourse, ItemID: "C2"})
	require.NoError(t, err)
	assert.True(t, receipt.Account.Ownership.Courses.Has("C2"))

	// removals propagate too
	upstream.set(sampleCatalog())
	require.NoError(t, catalogSvc.Reload(ctx))
	_, err = purchases.Purchase(ctx, acc.ID, purchase.Request{Tier: catalog.KindCourse, ItemID: "C2"})
	assert.ErrorIs(t, err, catalog.ErrItemNotFound)
}

func TestHealthz(t *testing.T) {
	h := NewAccountRouter(nil, nil, logger.Nop())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGatewayRejectsBadURL(t *testing.T) {
	_, err := NewGateway("://bad", "http://localhost", logger.Nop())
	assert.Error(t, err)
}
