package routes

import (
	"github.com/01moynul/items-api/internal/handlers"
	"github.com/01moynul/items-api/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Options carries what the router needs besides the handlers.
type Options struct {
	Log            *logrus.Logger
	Tokens         middleware.TokenValidator
	AllowedOrigins []string
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()

	// Request id and access log first, so CORS rejections are logged too.
	router.Use(middleware.RequestLogger(opts.Log))
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(opts.AllowedOrigins))

	// --- Public Routes ---
	router.GET("/ping", h.Ping)
	router.GET("/health", h.Health)
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)

	// --- Protected Routes (Login Required) ---
	items := router.Group("/items")
	items.Use(middleware.AuthMiddleware(opts.Tokens))
	{
		items.POST("", h.CreateItem)
		items.GET("", h.GetMyItems)
		items.GET("/:id", h.GetItem)
		items.PUT("/:id", h.UpdateItem)
		items.DELETE("/:id", h.DeleteItem)
	}

	return router
}
