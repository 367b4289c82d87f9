package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-shop-orders.git/internal/config"
	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/orders"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
	"github.com/ariefcatur/go-shop-orders.git/internal/stockwatch"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &stockwatch.Service{
		Redis:       rdb,
		Threshold:   cfg.LowStockThreshold,
		ServiceName: cfg.ServiceName + "-stockwatch",
	}

	group := getenv("STOCKWATCH_GROUP", "stockwatch-svc")
	workers := mustAtoi(os.Getenv("STOCKWATCH_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicStockMovement, workers)

	go func() {
		log.Printf("stockwatch consumer started: group=%s topic=%s workers=%d", group, orders.TopicStockMovement, workers)
		if err := cons.Start(ctx, svc.HandleMovement); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
