// internal/account/handler.go
package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coursemarket/internal/httpx"
)

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, validate: httpx.NewValidator()}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/accounts", h.HandleOpen)
	r.Get("/accounts/{id}", h.HandleGet)
}

type openRequest struct {
	Balance *decimal.Decimal `json:"balance" validate:"required"`
}

func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	a, err := h.service.Open(r.Context(), *req.Balance)
	if errors.Is(err, ErrNegativeBalance) || errors.Is(err, ErrInvalidBalance) {
		httpx.Error(w, http.StatusBadRequest, "invalid_balance", err)
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "open_failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r)
	if !ok {
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteLookupError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

// ParseID reads the {id} route parameter, writing a 400 when it is not a uuid.
func ParseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_account_id", err)
		return uuid.Nil, false
	}
	return id, true
}

// WriteLookupError maps ErrAccountNotFound to 404 and anything else to 500.
func WriteLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrAccountNotFound) {
		httpx.Error(w, http.StatusNotFound, "account_not_found", err)
		return
	}
	httpx.Error(w, http.StatusInternalServerError, "lookup_failed", err)
}
