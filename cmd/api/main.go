package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/ktsujino/inventory-backend/internal/config"
	"github.com/ktsujino/inventory-backend/internal/db"
	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/ktsujino/inventory-backend/internal/server"
	"github.com/ktsujino/inventory-backend/internal/storage"
	"go.uber.org/zap"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zlog.Sync()
	sugar := zlog.Sugar()

	conn, err := db.Connect(cfg)
	if err != nil {
		sugar.Fatalw("db connect error", "error", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Item{},
		&model.Image{},
		&model.ItemImage{},
	); err != nil {
		sugar.Fatalw("auto migrate error", "error", err)
	}

	store, err := storage.NewGCS(context.Background(), cfg.StorageBucket)
	if err != nil {
		sugar.Fatalw("storage init error", "error", err)
	}
	defer store.Close()

	srv := server.New(conn, store, cfg, sugar, gitSHA, buildTime)

	addr := ":" + cfg.Port
	sugar.Infow("starting server", "addr", addr)
	if err := srv.Start(addr); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}
