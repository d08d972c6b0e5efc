// internal/upsell/handler.go
package upsell

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coursemarket/internal/catalog"
	"coursemarket/internal/httpx"
)

// IndexSource yields the current catalog index. catalog.Service satisfies it.
type IndexSource interface {
	Index(ctx context.Context) (*catalog.Index, error)
}

type Handler struct {
	catalog IndexSource
}

func NewHandler(source IndexSource) *Handler {
	return &Handler{catalog: source}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/items/{id}/upsell", h.HandleOffer)
}

type offerResponse struct {
	Options []Option `json:"options"`
	Layout  Layout   `json:"layout"`
}

func (h *Handler) HandleOffer(w http.ResponseWriter, r *http.Request) {
	balance, err := httpx.ParseAmount(r.URL.Query().Get("balance"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_balance", err)
		return
	}
	idx, err := h.catalog.Index(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "catalog_unavailable", err)
		return
	}
	item, err := idx.Item(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "item_not_found", err)
		return
	}

	options, err := Resolve(item, idx)
	switch {
	case errors.Is(err, ErrNotGranular):
		httpx.Error(w, http.StatusConflict, "not_granular", err)
		return
	case errors.Is(err, ErrExternalItem):
		httpx.Error(w, http.StatusConflict, "external_item", err)
		return
	case err != nil:
		httpx.Error(w, http.StatusInternalServerError, "upsell_failed", err)
		return
	}

	options = Annotate(options, balance)
	httpx.JSON(w, http.StatusOK, offerResponse{Options: options, Layout: LayoutFor(options)})
}
