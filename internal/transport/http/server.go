package http

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"brandcatalog/internal/bootstrap"
	"brandcatalog/internal/transport/http/docs"
	"brandcatalog/internal/transport/http/handler"
	"brandcatalog/internal/transport/http/middleware"
	"brandcatalog/internal/transport/http/response"
)

const APIVersion = "1.0.0"

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	// Only a local reverse proxy may set X-Forwarded-For.
	_ = router.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(app.Logger),
		middleware.SecurityHeaders(),
	)
	if cfg.App.FrontendURL != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{cfg.App.FrontendURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if app.Limiter != nil {
		router.Use(middleware.RateLimit(app.Limiter, app.Logger))
	}

	healthHandler := handler.NewHealthHandler(cfg.App.Name, cfg.App.Env, app.StartedAt, app.HealthChecks())
	router.StaticFile("/", filepath.Join(cfg.App.WebDir, "index.html"))
	router.GET("/healthz", healthHandler.Check)
	docs.Register(router)

	authHandler := handler.NewAuthHandler(app.AuthService, app.Logger)
	brandHandler := handler.NewBrandHandler(app.BrandService, app.Logger)

	authRequired := []gin.HandlerFunc{middleware.AuthJWT(app.Tokens)}
	if cfg.Auth.RequiredRole != "" {
		authRequired = append(authRequired, middleware.RequireRole(cfg.Auth.RequiredRole))
	}

	api := router.Group("/api")
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Brands CRUD API", "version": APIVersion})
	})

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", append(authRequired, authHandler.Me)...)

	brandGroup := api.Group("/brands")
	brandGroup.Use(authRequired...)
	brandGroup.GET("", brandHandler.List)
	brandGroup.POST("", brandHandler.Create)
	brandGroup.GET("/:id", brandHandler.Get)
	brandGroup.PUT("/:id", brandHandler.Update)
	brandGroup.DELETE("/:id", brandHandler.Delete)
	brandGroup.GET("/:id/events", brandHandler.History)

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.CodeRouteNotFound, "route not found")
	})

	return router
}
