package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ktsujino/inventory-backend/internal/ai"
	"github.com/ktsujino/inventory-backend/internal/config"
	"github.com/ktsujino/inventory-backend/internal/handler"
	appmw "github.com/ktsujino/inventory-backend/internal/middleware"
	"github.com/ktsujino/inventory-backend/internal/repository"
	"github.com/ktsujino/inventory-backend/internal/service"
	"github.com/ktsujino/inventory-backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	e     *echo.Echo
	sha   string
	build string
}

func New(db *gorm.DB, store storage.Storage, cfg *config.Config, log *zap.SugaredLogger, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	imageRepo := repository.NewImageRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	imageOpts := service.ImageOptions{
		PreviewMaxWidth:  cfg.PreviewMaxWidth,
		PreviewMaxHeight: cfg.PreviewMaxHeight,
		PreviewQuality:   cfg.PreviewQuality,
		ThumbMaxWidth:    cfg.ThumbMaxWidth,
		ThumbMaxHeight:   cfg.ThumbMaxHeight,
		ThumbQuality:     cfg.ThumbQuality,
		SignedURLTTL:     time.Duration(cfg.SignedURLTTLMin) * time.Minute,
		MaxEncoders:      4,
	}
	imageSvc := service.NewImageService(imageRepo, store, imageOpts, log)
	itemSvc := service.NewItemService(itemRepo, imageRepo, log)
	productSvc := service.NewProductService(productRepo)
	categorySvc := service.NewCategoryService(categoryRepo)

	suggest := ai.NewSuggestClient(cfg.GeminiModel, log)

	imageHandler := handler.NewImageHandler(imageSvc, store, suggest)
	itemHandler := handler.NewItemHandler(itemSvc, imageSvc)
	productHandler := handler.NewProductHandler(productSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	userHandler := handler.NewUserHandler(userRepo)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	if cfg.FirebaseProject != "" {
		authMw, err := appmw.NewAuthMiddleware(context.Background(), cfg.FirebaseProject, userRepo)
		if err != nil {
			e.Logger.Fatalf("failed to init firebase auth: %v", err)
		}
		api.Use(authMw.RequireAuth)
	} else {
		log.Warn("FIREBASE_PROJECT_ID is not set; running without authentication")
	}

	api.GET("/me", userHandler.Me)

	api.POST("/items", itemHandler.Create)
	api.GET("/items", itemHandler.List)
	api.GET("/items/:shortId", itemHandler.Get)
	api.PUT("/items/:shortId", itemHandler.Update)
	api.DELETE("/items/:shortId", itemHandler.Delete)

	api.POST("/item-images", imageHandler.Upload)
	api.POST("/item-images/:uuid/suggest", imageHandler.Suggest)
	api.GET("/media", imageHandler.List)
	api.GET("/media/unused", imageHandler.ListUnused)
	api.GET("/media/:uuid", imageHandler.Get)
	api.DELETE("/media/:uuid", imageHandler.Delete)

	api.POST("/products", productHandler.Create)
	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.PUT("/products/:id", productHandler.Update)
	api.DELETE("/products/:id", productHandler.Delete)

	api.POST("/categories", categoryHandler.Create)
	api.GET("/categories", categoryHandler.List)
	api.PUT("/categories/:id", categoryHandler.Update)
	api.DELETE("/categories/:id", categoryHandler.Delete)

	return &Server{e: e, sha: sha, build: buildTime}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
