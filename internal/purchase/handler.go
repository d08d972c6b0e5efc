// internal/purchase/handler.go
package purchase

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"coursemarket/internal/account"
	"coursemarket/internal/catalog"
	"coursemarket/internal/httpx"
	"coursemarket/internal/upsell"
)

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, validate: httpx.NewValidator()}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/accounts/{id}/purchases", h.HandlePurchase)
	r.Get("/accounts/{id}/purchases", h.HandleHistory)
}

func (h *Handler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	accountID, ok := account.ParseID(w, r)
	if !ok {
		return
	}
	var req Request
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	receipt, err := h.service.Purchase(r.Context(), accountID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	accountID, ok := account.ParseID(w, r)
	if !ok {
		return
	}
	records, err := h.service.History(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"purchases": records, "count": len(records)})
}

func writeError(w http.ResponseWriter, err error) {
	var funds *InsufficientFundsError
	switch {
	case errors.As(err, &funds):
		httpx.ErrorWithDetails(w, http.StatusPaymentRequired, "insufficient_funds", err, map[string]any{
			"price":     funds.Price,
			"balance":   funds.Balance,
			"shortfall": funds.Shortfall,
		})
	case errors.Is(err, account.ErrAccountNotFound):
		httpx.Error(w, http.StatusNotFound, "account_not_found", err)
	case errors.Is(err, catalog.ErrItemNotFound):
		httpx.Error(w, http.StatusNotFound, "item_not_found", err)
	case errors.Is(err, upsell.ErrExternalItem):
		httpx.Error(w, http.StatusConflict, "external_item", err)
	case errors.Is(err, ErrTypeMismatch):
		httpx.Error(w, http.StatusConflict, "type_mismatch", err)
	case errors.Is(err, ErrRateLimited):
		httpx.Error(w, http.StatusTooManyRequests, "rate_limited", err)
	default:
		httpx.Error(w, http.StatusInternalServerError, "purchase_failed", err)
	}
}
