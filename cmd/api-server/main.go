package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bookshelf/database"
	"bookshelf/internal/cache"
	"bookshelf/internal/config"
	"bookshelf/internal/http-api/handler"
	"bookshelf/internal/http-api/middleware"
	"bookshelf/internal/http-api/repository"
	"bookshelf/internal/http-api/service"
	"bookshelf/internal/logging"
	"bookshelf/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	images, err := storage.NewDiskStore(cfg.ImageDir)
	if err != nil {
		return err
	}

	var bookCache *cache.BookCache
	if cfg.RedisURL != "" {
		bookCache, err = cache.NewBookCache(cfg.RedisURL, cfg.CacheExpiry())
		if err != nil {
			// the cache is optional, serve from the database
			logger.Warn("cache_disabled", "error", err.Error())
			bookCache = nil
		} else {
			defer bookCache.Close()
			logger.Info("cache_enabled", "ttl", cfg.CacheExpiry().String())
		}
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(repository.NewUserRepository(db), tokens, cfg.BcryptCost)
	bookService := service.NewBookService(
		repository.NewBookRepository(db),
		service.NewImageService(images, cfg.UploadMaxSize),
		bookCache,
		cfg.PublicBaseURL,
		logger,
	)

	health := handler.NewHealthHandler(sqlDB)
	if bookCache != nil {
		health.WithCache(bookCache)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterConfig{
		Auth:        handler.NewAuthHandler(authService),
		Books:       handler.NewBookHandler(bookService, cfg.UploadMaxSize),
		Health:      health,
		Tokens:      tokens,
		AuthLimiter: middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
		ImageDir:    images.Root(),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("received_shutdown_signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server_stopped_gracefully")
	return nil
}
