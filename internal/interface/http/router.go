package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/kissan-dost/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = cfg.HTTP.MaxUploadBytes
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/health", handler.Health)

	api := router.Group("/api")
	{
		api.POST("/chat", bodyLimit(cfg.HTTP.MaxUploadBytes), handler.Chat)
		api.GET("/prices", handler.Prices)
		api.GET("/weather", handler.Weather)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
