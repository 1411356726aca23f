package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lk2023060901/cloudvault-backend/internal/auth"
	"github.com/lk2023060901/cloudvault-backend/internal/conf"
	"github.com/lk2023060901/cloudvault-backend/internal/data"
	filebiz "github.com/lk2023060901/cloudvault-backend/internal/file/biz"
	filedata "github.com/lk2023060901/cloudvault-backend/internal/file/data"
	fileservice "github.com/lk2023060901/cloudvault-backend/internal/file/service"
	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/logger"
	"github.com/lk2023060901/cloudvault-backend/internal/server"
	"github.com/lk2023060901/cloudvault-backend/internal/user/biz"
	userdata "github.com/lk2023060901/cloudvault-backend/internal/user/data"
	"github.com/lk2023060901/cloudvault-backend/internal/user/service"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize global logger
	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(context.Background(), config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Initialize repositories
	userRepo := userdata.NewUserRepo(d.DB.GetDB())
	fileRepo := filedata.NewFileRepo(d.DB.GetDB())

	// Initialize use cases
	userUseCase := biz.NewUserUseCase(userRepo)
	fileUseCase := filebiz.NewFileUseCase(fileRepo, d.Blobs, log)

	if config.Auth.SeedDemoUsers {
		seedDemoUsers(context.Background(), userUseCase, log)
	}

	// Initialize services
	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer)
	userService := service.NewUserService(userUseCase, jwtManager, log)
	fileService := fileservice.NewFileService(fileUseCase, log)

	// Initialize server
	httpServer := server.NewHTTPServer(config, log, d, jwtManager, userService, fileService)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// seedDemoUsers creates well-known accounts for local development.
// Accounts that already exist are left untouched.
func seedDemoUsers(ctx context.Context, uc *biz.UserUseCase, log *logger.Logger) {
	demos := []struct {
		username string
		email    string
		password string
	}{
		{"demo", "demo@cloudvault.local", "demo123456"},
		{"testuser", "testuser@cloudvault.local", "test123456"},
	}

	for _, u := range demos {
		user, err := uc.Register(ctx, u.username, u.email, u.password)
		if err != nil {
			code := apperrors.ExtractCode(err)
			if code == apperrors.ErrUsernameTaken || code == apperrors.ErrEmailTaken {
				continue
			}
			log.Warn("failed to seed demo user",
				zap.String("username", u.username),
				zap.Error(err))
			continue
		}
		log.Info("seeded demo user",
			zap.String("username", u.username),
			zap.String("user_id", user.ID))
	}
}
