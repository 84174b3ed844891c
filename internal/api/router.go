package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/api/handlers"
	"github.com/vladislavdragonenkov/storefront/internal/api/middleware"
	"github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// RouterDeps — зависимости HTTP-роутера.
type RouterDeps struct {
	Cart   *handlers.CartHandler
	Orders *handlers.OrderHandler
	Health *health.Handler
	Logger *log.Entry
}

// NewRouter собирает gin-роутер сервиса корзины.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}

	router := gin.New()
	router.Use(recoveryMiddleware(logger))
	router.Use(loggingMiddleware(logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "storefront cart service",
			"version": version.GetVersion(),
		})
	})

	if deps.Health != nil {
		router.GET("/health", gin.WrapH(deps.Health))
		router.GET("/health/live", gin.WrapF(health.LivenessHandler))
		router.GET("/health/ready", gin.WrapF(deps.Health.ReadinessHandler))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireOwner())
	{
		cart := v1.Group("/cart")
		{
			cart.GET("", deps.Cart.Get)
			cart.DELETE("", deps.Cart.Clear)
			cart.POST("/items", deps.Cart.AddItem)
			cart.PUT("/items/:itemID", deps.Cart.UpdateQuantity)
			cart.DELETE("/items/:itemID", deps.Cart.RemoveItem)
			cart.POST("/coupon", deps.Cart.ApplyCoupon)
			cart.DELETE("/coupon", deps.Cart.RemoveCoupon)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", deps.Orders.Create)
			orders.GET("", deps.Orders.List)
			orders.GET("/:orderID", deps.Orders.Get)
		}
	}

	return router
}

// recoveryMiddleware перехватывает паники обработчиков.
func recoveryMiddleware(logger *log.Entry) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(log.Fields{
			"panic":  recovered,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("panic recovered in http handler")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// loggingMiddleware пишет структурированный access-лог.
func loggingMiddleware(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.WithFields(log.Fields{
			"method":      method,
			"path":        path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("http request")
	}
}
