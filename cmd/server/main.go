package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/d60-Lab/blog-api/internal/api/handler"
	"github.com/d60-Lab/blog-api/internal/api/router"
	"github.com/d60-Lab/blog-api/internal/cache"
	"github.com/d60-Lab/blog-api/internal/config"
	"github.com/d60-Lab/blog-api/internal/model"
	"github.com/d60-Lab/blog-api/internal/repository"
	"github.com/d60-Lab/blog-api/internal/service"
	"github.com/d60-Lab/blog-api/internal/telemetry"
	"github.com/d60-Lab/blog-api/pkg/logger"
)

// @title Blog API
// @version 1.0
// @description User registration, token login and cached post CRUD.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	settings, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(settings.IsProduction())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if settings.SecretKey == "" {
		log.Fatal("SECRET_KEY must be set")
	}

	sentryActive := false
	if settings.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         settings.SentryDSN,
			Environment: settings.Environment,
		}); err != nil {
			log.Warn("sentry init failed", zap.Error(err))
		} else {
			sentryActive = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, settings.ProjectName, settings.OTLPEndpoint)
	if err != nil {
		log.Fatal("telemetry setup failed", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(settings.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	// 与原服务一致：启动时建表
	if err := db.AutoMigrate(&model.User{}, &model.Post{}); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: settings.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// 缓存不可用时仍可启动，读路径会退化到直查库
		log.Warn("redis unreachable at startup", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	postCache := cache.NewPostCollectionCache(redisClient, settings.PostCacheTTL())

	authService := service.NewAuthService(userRepo, settings.SecretKey, settings.AccessTokenTTL())
	postService := service.NewPostService(postRepo, postCache, log)

	if settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.New(handler.New(authService, postService), authService, router.Options{
		Settings:     settings,
		SentryActive: sentryActive,
		Tracing:      settings.OTLPEndpoint != "",
	})

	srv := &http.Server{Addr: settings.ServerAddr, Handler: engine}
	go func() {
		log.Info("server listening", zap.String("addr", settings.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
}
