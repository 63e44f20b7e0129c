// Package main runs the background reminder worker (poll due bookings, deliver via Telegram).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roomly/backend/config"
	"github.com/roomly/backend/internal/reminders"
	"github.com/roomly/backend/pkg/database"
	"github.com/roomly/backend/pkg/queue"
	"github.com/roomly/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Telegram.BotToken == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is required for the reminder worker")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	repo := reminders.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	telegram := reminders.NewTelegramClient(cfg.Telegram.BotToken)

	poller := reminders.NewPoller(repo, jobQueue,
		time.Duration(cfg.Telegram.ReminderLeadMins)*time.Minute,
		time.Duration(cfg.Telegram.PollIntervalSecs)*time.Second,
		logger)
	sender := reminders.NewSender(repo, telegram, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go poller.Run(workerCtx)
	go sender.Run(workerCtx)
	logger.Info("reminder worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
