// internal/catalog/handler.go
package catalog

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"coursemarket/internal/httpx"
)

// ContactLinker builds the outside messaging link for an external listing.
type ContactLinker interface {
	Link(kind, id, title string) (string, error)
}

type Handler struct {
	service  Service
	contact  ContactLinker
	validate *validator.Validate
}

func NewHandler(service Service, contact ContactLinker) *Handler {
	return &Handler{service: service, contact: contact, validate: httpx.NewValidator()}
}

// Routes mounts the catalog endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/items", h.HandleBrowse)
	r.Get("/items/{id}", h.HandleGetItem)
	r.Post("/items/{id}/contact", h.HandleContact)
	r.Get("/snapshot", h.HandleSnapshot)
}

// ItemView is the JSON shape of a catalog item.
type ItemView struct {
	Type           Kind            `json:"type"`
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Origin         Origin          `json:"origin"`
	External       bool            `json:"external"`
	Duration       int             `json:"duration_minutes,omitempty"`
	ParentCourseID string          `json:"parent_course_id,omitempty"`
	TotalLessons   int             `json:"total_lessons,omitempty"`
	CourseIDs      []string        `json:"course_ids,omitempty"`
	Features       []string        `json:"features,omitempty"`
}

func NewItemView(it Item) ItemView {
	v := ItemView{
		Type:        it.Kind(),
		ID:          it.ItemID(),
		Title:       it.ItemTitle(),
		Description: it.ItemDescription(),
		Price:       Price(it),
		Origin:      it.ItemOrigin(),
		External:    IsExternal(it),
	}
	switch t := it.(type) {
	case Lesson:
		v.Duration = t.Duration
		v.ParentCourseID = t.ParentCourseID
	case Course:
		v.TotalLessons = t.TotalLessons
	case Pack:
		v.CourseIDs = t.CourseIDs
		v.Features = t.Features
	}
	return v
}

type browseParams struct {
	Search string `query:"q"`
	Filter string `query:"filter" validate:"omitempty,oneof=all courses packs lessons affordable faculty external"`
	Sort   string `query:"sort" validate:"omitempty,oneof=price-asc price-desc popular new"`
}

type browseResponse struct {
	Items []ItemView `json:"items"`
	Count int        `json:"count"`
	Empty bool       `json:"empty"`
}

func (h *Handler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	params := browseParams{
		Search: qs.Get("q"),
		Filter: qs.Get("filter"),
		Sort:   qs.Get("sort"),
	}
	if err := h.validate.Struct(params); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_query", err)
		return
	}
	balance, err := httpx.ParseAmount(qs.Get("balance"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_balance", err)
		return
	}

	q := Query{Search: params.Search, Filter: Filter(params.Filter), Sort: Sort(params.Sort)}
	if q.Sort == "" {
		q.Sort = SortPopular
	}
	entries, err := h.service.Browse(r.Context(), q, balance)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "browse_failed", err)
		return
	}

	resp := browseResponse{Items: make([]ItemView, 0, len(entries)), Count: len(entries), Empty: len(entries) == 0}
	for _, e := range entries {
		resp.Items = append(resp.Items, NewItemView(e.Item))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.itemError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewItemView(item))
}

func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.itemError(w, err)
		return
	}
	if !IsExternal(item) {
		httpx.Error(w, http.StatusConflict, "not_external", fmt.Errorf("%s %q is purchasable, not contact-only", item.Kind(), item.ItemID()))
		return
	}
	url, err := h.contact.Link(string(item.Kind()), item.ItemID(), item.ItemTitle())
	if err != nil {
		httpx.Error(w, http.StatusServiceUnavailable, "contact_unavailable", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	idx, err := h.service.Index(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "snapshot_failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, idx.Snapshot())
}

func (h *Handler) itemError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrItemNotFound) {
		httpx.Error(w, http.StatusNotFound, "item_not_found", err)
		return
	}
	httpx.Error(w, http.StatusInternalServerError, "lookup_failed", err)
}
