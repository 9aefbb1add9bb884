package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatforge/chatforge/internal/ai"
	"github.com/chatforge/chatforge/internal/config"
	"github.com/chatforge/chatforge/internal/db"
	"github.com/chatforge/chatforge/internal/httpapi"
	"github.com/chatforge/chatforge/internal/rag"
	"github.com/chatforge/chatforge/internal/store/rabbitmq"
	"github.com/chatforge/chatforge/internal/store/redisstore"
	"github.com/chatforge/chatforge/internal/webhook"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rds.Close()

	// Webhook dispatch: brokered when rabbit is configured, otherwise an
	// in-process pool.
	var sender webhook.Sender
	var pool *webhook.Pool
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Fatalf("rabbit publisher: %v", err)
		}
		defer pub.Close()
		sender = pub
	} else {
		pool = webhook.NewPool(webhook.NewDeliverer(webhook.NewRepo(gdb)), 4, 256)
		sender = pool
	}

	var retrieval *rag.Gateway
	if cfg.QdrantURL != "" && cfg.EmbeddingAPIKey != "" {
		store, err := rag.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
		if err != nil {
			log.Fatalf("qdrant: %v", err)
		}
		embedder := ai.NewEmbeddingClient(cfg.OpenAIBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.ProviderTimeout)
		retrieval = rag.NewGateway(store, embedder.Embed)
	} else {
		log.Printf("retrieval disabled: qdrant or embedding key not configured")
	}

	router := httpapi.NewRouter(gdb, cfg, rds, sender, retrieval)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server listening addr=%s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if pool != nil {
		pool.Close()
	}
}
