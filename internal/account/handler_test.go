package account

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursemarket/internal/logger"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	NewHandler(NewService(NewMemoryRepository(), logger.Nop())).Routes(r)
	return r
}

func TestHandleOpenAndGet(t *testing.T) {
	h := newTestRouter()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"balance":"800"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "800", created.Wallet.Balance.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts/"+created.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Empty(t, got.Ownership.Courses)
}

func TestHandleOpenRejectsBadBodies(t *testing.T) {
	h := newTestRouter()

	for _, body := range []string{`{"balance":"-5"}`, `{"balance":"69.995"}`, `{"balance":"10000000000"}`, `{}`, `{"balance":"800","extra":1}`, `not json`} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHandleGetErrors(t *testing.T) {
	h := newTestRouter()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts/6f1c8e0a-3a5e-4f39-9f43-0c6d1e2a9b10", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
