// Command cleanup-images deletes orphaned draft images: rows whose usage
// count is zero, that no item references, and that have sat untouched longer
// than the configured minimum age. It is meant to run on a schedule (Cloud
// Scheduler / cron), not inside the request path.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/ktsujino/inventory-backend/internal/config"
	"github.com/ktsujino/inventory-backend/internal/db"
	"github.com/ktsujino/inventory-backend/internal/repository"
	"github.com/ktsujino/inventory-backend/internal/service"
	"github.com/ktsujino/inventory-backend/internal/storage"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to parse env: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zlog.Sync()
	sugar := zlog.Sugar()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	conn, err := db.Connect(cfg)
	if err != nil {
		sugar.Fatalw("failed to connect db", "error", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		sugar.Fatalw("failed to get sql db", "error", err)
	}
	defer sqlDB.Close()

	store, err := storage.NewGCS(ctx, cfg.StorageBucket)
	if err != nil {
		sugar.Fatalw("failed to init storage", "error", err)
	}
	defer store.Close()

	imageRepo := repository.NewImageRepository(conn)
	opts := service.DefaultImageOptions()
	svc := service.NewImageService(imageRepo, store, opts, sugar)

	minAge := time.Duration(cfg.CleanupMinAgeHours) * time.Hour
	deleted, err := svc.CleanupOrphans(ctx, minAge)
	if err != nil {
		sugar.Fatalw("cleanup failed", "error", err)
	}
	sugar.Infow("cleanup completed", "deleted", deleted, "min_age", minAge.String())
}
