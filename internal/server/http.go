package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/cloudvault-backend/internal/auth"
	"github.com/lk2023060901/cloudvault-backend/internal/auth/middleware"
	"github.com/lk2023060901/cloudvault-backend/internal/conf"
	"github.com/lk2023060901/cloudvault-backend/internal/data"
	fileservice "github.com/lk2023060901/cloudvault-backend/internal/file/service"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/logger"
	userservice "github.com/lk2023060901/cloudvault-backend/internal/user/service"
	"go.uber.org/zap"
)

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	d *data.Data,
	jwtManager *auth.JWTManager,
	userService *userservice.UserService,
	fileService *fileservice.FileService,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log))
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := d.DB.HealthCheck(c.Request.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	authRequired := middleware.JWTAuth(jwtManager, log)

	api := router.Group("/api")
	userService.RegisterRoutes(api, authRequired)
	fileService.RegisterRoutes(api, authRequired)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
