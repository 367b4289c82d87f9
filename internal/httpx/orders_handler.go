package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/orders"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
)

type OrdersHandler struct {
	Svc            *orders.Service
	Repo           *orders.Repo
	DB             *pgxpool.Pool
	Redis          *redis.Client
	OrderProducer  *kafkax.Producer // topic order.created
	StatusProducer *kafkax.Producer // topic order.status
	MoveProducer   *kafkax.Producer // topic inventory.movement
	Service        string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}/status", h.updateStatus)
}

type UpdateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID := actorID(r)
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snap, err := h.Svc.CreateOrder(ctx, userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.cacheStatus(ctx, snap.Order.ID, snap.Order.Status)
	h.publishCreated(r, snap)
	for _, it := range snap.Items {
		h.publishMovement(r, orders.StockMovementPayload{
			ProductID:   it.ProductID,
			Type:        inventory.TypeOut,
			Qty:         it.Qty,
			Reason:      inventory.ReasonSale,
			ReferenceID: snap.Order.ID,
			ActorID:     userID,
		})
	}

	writeJSON(w, http.StatusCreated, snap)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	actor := actorID(r)
	from := orders.Status("")
	if o, err := h.Repo.Get(ctx, h.DB, orderID); err == nil && o != nil {
		from = o.Status
	}

	snap, err := h.Svc.UpdateStatus(ctx, orderID, orders.Status(req.Status), actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.cacheStatus(ctx, orderID, snap.Order.Status)
	h.publishStatusChanged(r, orderID, from, snap.Order.Status, actor)
	if snap.Order.Status == orders.StatusCancelled {
		for _, it := range snap.Items {
			h.publishMovement(r, orders.StockMovementPayload{
				ProductID:   it.ProductID,
				Type:        inventory.TypeIn,
				Qty:         it.Qty,
				Reason:      inventory.ReasonReturn,
				ReferenceID: orderID,
				ActorID:     actor,
			})
		}
	}

	writeJSON(w, http.StatusOK, snap)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache status
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	// 2) fallback DB
	o, err := h.Repo.Get(ctx, h.DB, orderID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if o == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	items, err := h.Repo.ListItems(ctx, h.DB, orderID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.cacheStatus(ctx, orderID, o.Status)
	writeJSON(w, http.StatusOK, orders.Snapshot{Order: *o, Items: items})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, st orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%q}`, st), redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publishCreated(r *http.Request, snap *orders.Snapshot) {
	lines := make([]orders.OrderLine, 0, len(snap.Items))
	for _, it := range snap.Items {
		lines = append(lines, orders.OrderLine{
			ProductID: it.ProductID, ProductName: it.ProductName,
			PriceCents: it.PriceCents, Qty: it.Qty,
		})
	}
	publishEvent(h.OrderProducer, h.Service, orders.EventOrderCreated,
		r.Header.Get("X-Request-Id"), snap.Order.ID, snap.Order.ID,
		orders.OrderCreatedPayload{
			OrderID: snap.Order.ID, UserID: snap.Order.UserID,
			Lines: lines, TotalCents: snap.Order.TotalCents,
		})
}

func (h *OrdersHandler) publishStatusChanged(r *http.Request, orderID string, from, to orders.Status, actor string) {
	publishEvent(h.StatusProducer, h.Service, orders.EventOrderStatusChanged,
		r.Header.Get("X-Request-Id"), orderID, orderID,
		orders.OrderStatusChangedPayload{OrderID: orderID, From: from, To: to, ActorID: actor})
}

func (h *OrdersHandler) publishMovement(r *http.Request, p orders.StockMovementPayload) {
	publishEvent(h.MoveProducer, h.Service, orders.EventStockMovement,
		r.Header.Get("X-Request-Id"), p.ReferenceID, p.ProductID, p)
}

// writeEngineError memetakan taxonomy error engine ke HTTP; stock rejection
// dapat body terstruktur, bukan error generik.
func writeEngineError(w http.ResponseWriter, err error) {
	var insuf *inventory.InsufficientStockError
	var badEdge *orders.InvalidTransitionError
	switch {
	case errors.Is(err, orders.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
	case errors.Is(err, orders.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status value"})
	case errors.Is(err, orders.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, inventory.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
	case errors.As(err, &insuf):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "insufficient_stock",
			"product_id": insuf.ProductID,
			"requested":  insuf.Requested,
			"available":  insuf.Available,
		})
	case errors.As(err, &badEdge):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": "invalid_transition",
			"from":  badEdge.From,
			"to":    badEdge.To,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
