package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/http-api/middleware"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	Auth        *AuthHandler
	Books       *BookHandler
	Health      *HealthHandler
	Tokens      middleware.TokenVerifier
	AuthLimiter *middleware.IPRateLimiter
	ImageDir    string
	CORSOrigins []string
	Logger      *slog.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Check)
	}
	r.Static("/images", cfg.ImageDir)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	if cfg.AuthLimiter != nil {
		authGroup.Use(middleware.RateLimit(cfg.AuthLimiter))
	}
	cfg.Auth.RegisterRoutes(authGroup)

	cfg.Books.RegisterRoutes(api.Group("/books"), middleware.AuthMiddleware(cfg.Tokens))

	return r
}
