package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/ErlanBelekov/contacts-api/internal/requestid"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/respond"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

const maxBodyBytes = 1 << 20

type tokenVerifier interface {
	Verify(raw string) (domain.Identity, error)
}

type RouterConfig struct {
	Logger         *slog.Logger
	AuthHandler    *handler.AuthHandler
	ContactHandler *handler.ContactHandler
	Tokens         tokenVerifier

	// LoginLimiter is optional; nil disables login throttling.
	LoginLimiter middleware.AttemptLimiter

	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(cfg.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.BodyLimit(maxBodyBytes))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.AllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Authorization", "Content-Type", requestid.Header},
			ExposeHeaders: []string{requestid.Header, "Retry-After"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, respond.Message("Not found"))
	})

	authMW := middleware.Auth(cfg.Tokens, cfg.Logger)

	api := r.Group("/api")

	// Public auth routes
	auth := api.Group("/auth")
	auth.POST("/register", cfg.AuthHandler.Register)
	if cfg.LoginLimiter != nil {
		auth.POST("/login", middleware.LoginThrottle(cfg.LoginLimiter, cfg.Logger), cfg.AuthHandler.Login)
	} else {
		auth.POST("/login", cfg.AuthHandler.Login)
	}
	auth.GET("/me", authMW, cfg.AuthHandler.Me)

	// Protected contact routes
	contacts := api.Group("/contacts", authMW)
	contacts.GET("", cfg.ContactHandler.List)
	contacts.POST("", cfg.ContactHandler.Create)
	contacts.GET("/:id", cfg.ContactHandler.GetByID)
	contacts.PATCH("/:id", cfg.ContactHandler.Update)
	contacts.DELETE("/:id", cfg.ContactHandler.Delete)

	return r
}
