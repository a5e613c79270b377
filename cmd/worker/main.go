package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Trishit-H/tourhub/internal/config"
	"github.com/Trishit-H/tourhub/internal/db"
	"github.com/Trishit-H/tourhub/internal/mail"
	"github.com/Trishit-H/tourhub/internal/observability"
	"github.com/Trishit-H/tourhub/internal/queue/redisclient"
	"github.com/Trishit-H/tourhub/internal/queue/worker"
	"github.com/Trishit-H/tourhub/internal/repo/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisAddr == "" {
		log.Error("REDIS_ADDR is required for the mail worker")
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisConn := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisConn.Close()

	pingCtx, cancelPing := config.WithTimeout(2 * time.Second)
	err = redisConn.Ping(pingCtx)
	cancelPing()
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}

	prom := observability.NewProm(nil)

	mailer := mail.NewProtectedMailer(
		mail.NewLogMailer(cfg.MailFrom, log),
		mail.ProtectedMailerConfig{},
	)
	usersRepo := postgres.NewUsersRepo(pool, prom)

	w := worker.New(worker.Config{
		QueueKey:    mail.MailQueueKey,
		PopTimeout:  5 * time.Second,
		SendTimeout: 10 * time.Second,
	}, redisConn, mailer, usersRepo, prom, log)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "error", err)
	}
	log.Info("worker shutdown complete")
}
