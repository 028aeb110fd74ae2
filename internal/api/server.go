package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blume-tech/jetson-app/internal/config"
	"github.com/blume-tech/jetson-app/internal/core"
	"github.com/blume-tech/jetson-app/internal/logger"
	"github.com/blume-tech/jetson-app/internal/stream"
)

// Server exposes the app core over http
type Server struct {
	conf   config.APIConfig
	core   *core.Core
	relay  *stream.Relay
	router *gin.Engine
	log    logger.Logger
}

// NewServer returns a new instance of Server
func NewServer(conf config.APIConfig, appCore *core.Core) *Server {
	server := &Server{
		conf:  conf,
		core:  appCore,
		relay: stream.NewRelay(),
		log:   logger.New(),
	}

	server.initRouter()

	return server
}

// Router returns the underlying gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) initRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.router.GET("/", s.handleInfo)
	s.router.GET("/ping", s.handlePing)
	s.router.GET("/metrics", s.handleMetrics)
	s.router.GET("/status", s.handleStatus)
	s.router.GET("/system-info", s.handleSystemInfo)
	s.router.GET("/test-connection", s.handleTestConnection)
	s.router.GET("/cameras", s.handleCameras)
	s.router.POST("/cameras/rescan", s.handleRescan)
	s.router.GET("/cameras/:id/stream", s.handleCameraStream)
	s.router.GET("/scan/status", s.handleScanStatus)
	s.router.GET("/download_logs", s.handleDownloadLogs)
	s.router.GET("/ws", s.handleWebSocket)
}

// Run serves the api until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.conf.Host, s.conf.Port)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errChan := make(chan error, 1)

	go func() {
		s.log.Info().Str("addr", addr).Msg("api server listening")
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Second*5,
		)

		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	}
}
