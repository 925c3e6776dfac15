// Package main runs the workspace membership HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/productcube/workspace-service/config"
	"github.com/productcube/workspace-service/internal/directory"
	"github.com/productcube/workspace-service/internal/emaillogs"
	"github.com/productcube/workspace-service/internal/identity"
	"github.com/productcube/workspace-service/internal/middleware"
	"github.com/productcube/workspace-service/internal/notifier"
	"github.com/productcube/workspace-service/internal/workspaces"
	"github.com/productcube/workspace-service/pkg/database"
	"github.com/productcube/workspace-service/pkg/queue"
	"github.com/productcube/workspace-service/pkg/redis"
	"github.com/productcube/workspace-service/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	serviceTimeout := time.Duration(cfg.Services.TimeoutSeconds) * time.Second
	identityClient := identity.NewClient(cfg.Services.AuthURL, cfg.Services.AuthKey, serviceTimeout, logger)
	directoryClient := directory.NewClient(cfg.Services.UserURL, cfg.Services.UserKey, serviceTimeout, logger)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	invitationNotifier := notifier.NewQueueNotifier(jobQueue, logger)

	// Workspaces
	workspaceRepo := workspaces.NewRepository(pool)
	workspaceSvc := workspaces.NewService(workspaceRepo, directoryClient, identityClient, invitationNotifier, cfg.Invites.LinkBaseURL, logger)
	workspaceHandler := workspaces.NewHandler(workspaceSvc)

	// Invitation email ledger
	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo, workspaceSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Every route resolves the caller; the operations decide what anonymous
	// or non-member callers may do.
	api := router.Group("")
	api.Use(middleware.Identity(identityClient, cfg.Server.ServiceKey, logger))
	{
		api.GET("/workspaces", workspaceHandler.List)
		api.POST("/workspaces", workspaceHandler.Create)
		api.GET("/workspaces/:name", workspaceHandler.Get)
		api.DELETE("/workspaces/:name", workspaceHandler.Delete)
		api.POST("/workspaces/:name/invites", workspaceHandler.Invite)
		api.POST("/workspaces/:name/invites/accept", workspaceHandler.Accept)
		api.POST("/workspaces/:name/invites/decline", workspaceHandler.Decline)
		api.GET("/workspaces/:name/emails", emailLogsHandler.ListByWorkspace)

		// Inter-service: pending invitations for a user.
		api.GET("/invitations/:userId", workspaceHandler.PendingInvitations)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
