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

	httpapi "craftmarket/internal/http"
	"craftmarket/internal/repository"
	"craftmarket/internal/service"
	"craftmarket/internal/verification"

	_ "craftmarket/docs"
)

func main() {
	_ = godotenv.Load()

	products, orders, accounts, tx := buildRepositories()

	catalogSvc := service.NewCatalogService(products, accounts, tx)
	reviewSvc := service.NewReviewService(products, tx)
	orderSvc := service.NewOrderService(products, orders, tx)
	accountSvc := service.NewAccountService(accounts)
	codes := verification.NewStore(otpTTL())

	srv := httpapi.NewServer(catalogSvc, reviewSvc, orderSvc, accountSvc, codes)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: srv.Engine(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// buildRepositories выбирает бэкенд: Mongo при заданном MONGO_URI,
// иначе in-memory
func buildRepositories() (repository.ProductRepository, repository.OrderRepository, repository.AccountRepository, repository.TxManager) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		store := repository.NewMemoryStore()
		return store, repository.NewMemoryOrders(store), repository.NewMemoryAccounts(store), repository.NewMemoryTx(store)
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "craftmarket"
	}
	client, err := repository.NewMongoConnection(repository.MongoConfig{URI: uri, DBName: dbName})
	if err != nil {
		log.Fatalf("mongo connection failed: %v", err)
	}
	db := client.Database(dbName)
	return repository.NewMongoProducts(db),
		repository.NewMongoOrders(db),
		repository.NewMongoAccounts(db),
		repository.NewMongoTx(client)
}

func otpTTL() time.Duration {
	if v := os.Getenv("OTP_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid OTP_TTL %q, using default", v)
	}
	return verification.DefaultTTL
}
