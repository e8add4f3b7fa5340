package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"go.uber.org/zap"

	"github.com/votetrack/votetrack/config"
	"github.com/votetrack/votetrack/internal/api"
	"github.com/votetrack/votetrack/internal/mailer"
	redisclient "github.com/votetrack/votetrack/internal/redis"
	"github.com/votetrack/votetrack/internal/repository"
	"github.com/votetrack/votetrack/internal/service"
	"github.com/votetrack/votetrack/internal/sweeper"
	"github.com/votetrack/votetrack/pkg/logger"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zlog.Sync()

	rdb, err := redisclient.New(cfg)
	if err != nil {
		zlog.Fatal("redis connection failed", zap.Error(err))
	}

	pollRepo := repository.NewRedisPollRepository(rdb, zlog)
	userRepo := repository.NewRedisUserRepository(rdb)

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg, zlog)
	} else {
		mail = mailer.NewLog(zlog)
	}

	authService := service.NewAuthService(userRepo, mail, cfg.JWTSecret, zlog)
	pollService := service.NewPollService(pollRepo, zlog)
	voteService := service.NewVoteService(pollRepo, zlog)
	resultService := service.NewResultService(pollRepo)

	interval, err := time.ParseDuration(cfg.SweepInterval)
	if err != nil {
		zlog.Warn("invalid SWEEP_INTERVAL, falling back to 1m", zap.Error(err))
		interval = time.Minute
	}
	rs := redsync.New(goredis.NewPool(rdb))
	sweep := sweeper.New(pollRepo, rs, interval, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go sweep.Run(ctx)

	r := gin.Default()
	handler := api.NewHandler(authService, pollService, voteService, resultService, zlog)
	api.RegisterRoutes(r, handler, authService, userRepo)

	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
