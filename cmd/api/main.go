package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/grubdash-service/internal/config"
	"github.com/grubdash-service/internal/events"
	handler "github.com/grubdash-service/internal/http"
	"github.com/grubdash-service/internal/logger"
	"github.com/grubdash-service/internal/repo"
	"github.com/grubdash-service/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var publisher events.Publisher
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zlog.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opt)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		zlog.Info("connected to redis")

		publisher = events.NewRedisPublisher(redisClient)
		consumer := events.NewConsumer(redisClient, zlog.Named("events"))
		go consumer.Subscribe(ctx, events.Patterns...)
	} else {
		zlog.Info("REDIS_URL not set, event publishing disabled")
	}

	dishService := service.NewDishService(repo.NewMemoryDishRepository(), publisher)
	orderService := service.NewOrderService(repo.NewMemoryOrderRepository(), publisher)

	h := handler.NewHandler(dishService, orderService)
	r := handler.NewRouter(zlog, cfg.AllowedOrigins, h)
	zlog.Info("cors configured",
		zap.Bool("allow_all_origins", cfg.AllowAllOrigins()),
		zap.Strings("origins", cfg.AllowedOrigins),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zlog.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zlog.Error("error closing redis connection", zap.Error(err))
		}
	}

	zlog.Info("server exiting")
}
