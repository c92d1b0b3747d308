package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"podscribe/internal/api/middleware"
	v1routes "podscribe/internal/api/v1/routes"
	"podscribe/internal/api/v1/services"
	"podscribe/internal/app/job"
)

// Config represents API server configuration
type Config struct {
	Host        string
	Port        string
	ReadTimeout time.Duration
	IdleTimeout time.Duration
	Environment string
}

// Server represents the API server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates a new API server
func NewServer(config Config, controller *job.Controller, logger *zap.Logger) *Server {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	serviceContainer := &v1routes.ServiceContainer{
		JobService: services.NewJobService(controller),
	}

	api := router.Group("/api")
	{
		v1 := api.Group("/v1")
		v1routes.RegisterRoutes(v1, serviceContainer)
	}

	// SSE responses must not buffer behind the write timeout, so the
	// server keeps it at zero and relies on per-call timeouts instead.
	addr := fmt.Sprintf("%s:%s", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: config.ReadTimeout,
		IdleTimeout: config.IdleTimeout,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Start starts the API server
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.String("host", s.config.Host),
		zap.String("port", s.config.Port),
		zap.String("environment", s.config.Environment),
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	s.logger.Info("API server started", zap.String("address", s.httpServer.Addr))
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
