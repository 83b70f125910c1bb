package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/grubdash-service/internal/logger"
	"go.uber.org/zap"
)

// NewRouter builds the engine with request logging, panic recovery, CORS
// and all routes. An origin of "*" allows any origin.
func NewRouter(log *zap.Logger, allowedOrigins []string, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(
		logger.Middleware(log),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.FromContext(c.Request.Context()).Error("panic recovered", zap.Any("panic", recovered))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		}),
		cors.New(corsConfig(allowedOrigins)),
	)
	h.RegisterRoutes(r)
	return r
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader},
		ExposeHeaders: []string{logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range allowedOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}
