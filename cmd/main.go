// jobsearch-board-service
//
// Moderation workflow engine for the job board:
//   - offer lifecycle  (submit → review → publish/reject → expire → extend)
//   - application lifecycle (apply → invite/reject, 30-minute decision cooldown)
//   - audit trail + notification dispatch on every transition
//   - cron-driven expiry of published offers past their deadline
//
// Exposes an HTTP API consumed by the front gateway, which forwards the
// authenticated identity via x-user-id / x-user-roles headers.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobsearch/board-service/internal/audit"
	"jobsearch/board-service/internal/config"
	"jobsearch/board-service/internal/db"
	"jobsearch/board-service/internal/httpapi"
	"jobsearch/board-service/internal/notify"
	"jobsearch/board-service/internal/scheduler"
	"jobsearch/board-service/internal/store"
	"jobsearch/board-service/internal/workflow"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[board-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[board-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[board-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[board-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[board-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[board-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[board-service] Redis connected ✓")

	// ── Workflow ─────────────────────────────────────────────────────────────
	svc := workflow.NewService(
		store.New(pool),
		audit.New(pool),
		notify.New(pool, rdb),
	)
	gw := workflow.NewGateway(svc)

	// ── Expiry scheduler ─────────────────────────────────────────────────────
	sched := scheduler.New(svc, cfg.ExpiryIntervalMinutes)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[board-service] Scheduler: %v", err)
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := httpapi.NewHandler(gw)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[board-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[board-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[board-service] Shutting down…")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[board-service] Shutdown error: %v", err)
	}
	log.Println("[board-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "board-service",
		"version": version,
	})
}
