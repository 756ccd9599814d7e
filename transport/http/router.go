package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletauth/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(auth *service.Authenticator, reader *service.DataReader, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	handlers := NewAuthHandlers(auth, reader)

	// Auth routes
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.GET("/session", handlers.Session)
		authGroup.POST("/logout", handlers.Logout)
	}

	// Data routes, anonymous reads allowed
	router.GET("/api/projects/:id", handlers.Project)
	router.GET("/api/trends", handlers.TopicSearch)

	// Protected API routes
	api := router.Group("/api")
	api.Use(RequireSession(auth))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
