package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-shop-orders.git/internal/catalog"
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/orders"
	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
)

type ProductsHandler struct {
	Products     *catalog.Repo
	Movements    *inventory.MovementRepo
	Ledger       *inventory.Ledger
	Tx           *postgres.TxManager
	DB           *pgxpool.Pool
	MoveProducer *kafkax.Producer
	Service      string
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
	r.Put("/products/{id}/stock", h.adjustStock)
	r.Get("/products/{id}/movements", h.listMovements)
}

type AdjustStockReq struct {
	Quantity int    `json:"quantity"` // signed: positif restock, negatif koreksi turun
	Reason   string `json:"reason"`
}

type AdjustStockResp struct {
	OldStock int `json:"old_stock"`
	NewStock int `json:"new_stock"`
	Change   int `json:"change"`
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Products.ListActive(ctx, h.DB)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Products.Get(ctx, h.DB, chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	actor := actorID(r)
	var req AdjustStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Quantity == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var newStock int
	err := h.Tx.WithinTx(ctx, func(ctx context.Context, q postgres.DBTX) error {
		n, err := h.Ledger.Adjust(ctx, q, productID, req.Quantity, req.Reason, actor)
		if err != nil {
			return err
		}
		newStock = n
		return nil
	})
	if err != nil {
		var insuf *inventory.InsufficientStockError
		switch {
		case errors.Is(err, inventory.ErrProductNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		case errors.As(err, &insuf):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":      "insufficient_stock",
				"product_id": insuf.ProductID,
				"requested":  insuf.Requested,
				"available":  insuf.Available,
			})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	mtype := inventory.TypeIn
	qty := req.Quantity
	if req.Quantity < 0 {
		mtype = inventory.TypeOut
		qty = -req.Quantity
	}
	publishEvent(h.MoveProducer, h.Service, orders.EventStockMovement,
		r.Header.Get("X-Request-Id"), "", productID,
		orders.StockMovementPayload{
			ProductID: productID, Type: mtype, Qty: qty,
			Reason: reasonOrDefault(req.Reason), ActorID: actor,
		})

	writeJSON(w, http.StatusOK, AdjustStockResp{
		OldStock: newStock - req.Quantity,
		NewStock: newStock,
		Change:   req.Quantity,
	})
}

func (h *ProductsHandler) listMovements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ms, err := h.Movements.ListByProduct(ctx, h.DB, chi.URLParam(r, "id"), 50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return inventory.ReasonAdjustment
	}
	return reason
}
