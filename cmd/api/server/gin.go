package server

import (
	"net/http"
	"time"

	ginhandler "user-account-service/internal/adapter/gin/handler"
	ginrouter "user-account-service/internal/adapter/gin/router"

	"go.uber.org/zap"
)

// SetupGinServer creates the HTTP server serving the Gin REST API
func SetupGinServer(handler *ginhandler.UserHandler, opts ginrouter.Options, addr string, l *zap.Logger) *http.Server {
	router := ginrouter.SetupRouter(handler, opts, l)

	l.Info("Gin REST API configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
