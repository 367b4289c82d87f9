package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-shop-orders.git/internal/cart"
	"github.com/ariefcatur/go-shop-orders.git/internal/catalog"
	"github.com/ariefcatur/go-shop-orders.git/internal/config"
	"github.com/ariefcatur/go-shop-orders.git/internal/httpx"
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/orders"
	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers (satu per topic)
	pOrder := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pOrder.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 1024)
	pStatus.Start(ctx)
	pMove := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockMovement, 1024)
	pMove.Start(ctx)

	// Repo, ledger, service
	productRepo := &catalog.Repo{}
	cartRepo := &cart.Repo{}
	orderRepo := &orders.Repo{}
	movementRepo := &inventory.MovementRepo{}
	ledger := &inventory.Ledger{Products: productRepo, Movements: movementRepo}
	txm := &postgres.TxManager{Pool: db}
	svc := &orders.Service{Tx: txm, Carts: cartRepo, Orders: orderRepo, Ledger: ledger}

	// Handlers
	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Svc: svc, Repo: orderRepo, DB: db, Redis: rdb,
		OrderProducer: pOrder, StatusProducer: pStatus, MoveProducer: pMove,
		Service: cfg.ServiceName,
	}
	oh.Register(router)
	ch := &httpx.CartHandler{Carts: cartRepo, Products: productRepo, DB: db}
	ch.Register(router)
	ph := &httpx.ProductsHandler{
		Products: productRepo, Movements: movementRepo, Ledger: ledger,
		Tx: txm, DB: db, MoveProducer: pMove, Service: cfg.ServiceName,
	}
	ph.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
		case <-gctx.Done():
		}
		log.Println("shutting down...")

		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		return srv.Shutdown(ctx2)
	})

	if err := g.Wait(); err != nil {
		log.Printf("exit: %v", err)
	}

	// flush producer lalu stop loop
	pOrder.Close()
	pStatus.Close()
	pMove.Close()
	cancel()
	pOrder.WaitClosed()
	pStatus.WaitClosed()
	pMove.WaitClosed()
}
