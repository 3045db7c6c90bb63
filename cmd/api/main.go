package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/shoplite/go-shop-api/internal/auth"
	"github.com/shoplite/go-shop-api/internal/cart"
	"github.com/shoplite/go-shop-api/internal/catalog"
	"github.com/shoplite/go-shop-api/internal/config"
	"github.com/shoplite/go-shop-api/internal/httpx"
	kafkax "github.com/shoplite/go-shop-api/internal/kafka"
	"github.com/shoplite/go-shop-api/internal/orders"
	"github.com/shoplite/go-shop-api/internal/postgres"
	"github.com/shoplite/go-shop-api/internal/redisx"
	"github.com/shoplite/go-shop-api/internal/users"
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

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	// Token codec & repos
	codec := auth.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	userRepo := &users.Repo{DB: db}
	catalogRepo := &catalog.Repo{DB: db}
	cartRepo := &cart.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}

	// Router: public routes, then token-gated cart/order routes
	router := httpx.NewRouter()
	ah := &httpx.AuthHandler{Users: userRepo, Tokens: codec}
	ah.Register(router)
	ph := &httpx.CatalogHandler{Catalog: catalogRepo}
	ph.Register(router)

	gate := &httpx.Gate{Tokens: codec}
	router.Group(func(r chi.Router) {
		r.Use(gate.Handler)
		ch := &httpx.CartHandler{Cart: cartRepo}
		ch.Register(r)
		oh := &httpx.OrdersHandler{
			Orders:   orderRepo,
			Producer: prod,
			Redis:    rdb,
			Service:  cfg.ServiceName,
		}
		oh.Register(r)
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
