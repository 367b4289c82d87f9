package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-shop-orders.git/internal/cart"
	"github.com/ariefcatur/go-shop-orders.git/internal/catalog"
)

type CartHandler struct {
	Carts    *cart.Repo
	Products *catalog.Repo
	DB       *pgxpool.Pool
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.list)
	r.Post("/cart/items", h.add)
	r.Put("/cart/items/{id}", h.update)
	r.Delete("/cart/items/{id}", h.remove)
	r.Delete("/cart", h.clear)
}

type AddCartItemReq struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type UpdateCartItemReq struct {
	Qty int `json:"qty"`
}

type CartResp struct {
	Items      []cart.Item `json:"items"`
	TotalItems int         `json:"total_items"`
	TotalCents int64       `json:"total_cents"`
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	userID := actorID(r)
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Carts.ListByUser(ctx, h.DB, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	var total int64
	for _, it := range items {
		total += it.PriceCents * int64(it.Qty)
	}
	writeJSON(w, http.StatusOK, CartResp{Items: items, TotalItems: len(items), TotalCents: total})
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	userID := actorID(r)
	var req AddCartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if userID == "" || req.ProductID == "" || req.Qty <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Products.Get(ctx, h.DB, req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if p == nil || !p.IsActive {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}

	// snapshot nama+harga diambil sekarang, bukan saat checkout
	it := cart.Item{
		UserID:      userID,
		ProductID:   p.ID,
		ProductName: p.Name,
		PriceCents:  p.PriceCents,
		Qty:         req.Qty,
	}
	if err := h.Carts.Add(ctx, h.DB, &it); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	userID := actorID(r)
	itemID := chi.URLParam(r, "id")
	var req UpdateCartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Qty <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "qty must be > 0"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Carts.UpdateQty(ctx, h.DB, userID, itemID, req.Qty)
	if errors.Is(err, cart.ErrItemNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart item not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	userID := actorID(r)
	itemID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Carts.Remove(ctx, h.DB, userID, itemID)
	if errors.Is(err, cart.ErrItemNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart item not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "removed"})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	userID := actorID(r)
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Carts.DeleteByUser(ctx, h.DB, userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "cleared"})
}
