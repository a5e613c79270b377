package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Trishit-H/tourhub/internal/config"
	"github.com/Trishit-H/tourhub/internal/db"
	httpx "github.com/Trishit-H/tourhub/internal/http"
	"github.com/Trishit-H/tourhub/internal/mail"
	"github.com/Trishit-H/tourhub/internal/observability"
	"github.com/Trishit-H/tourhub/internal/queue/redisclient"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	pool, err := db.NewPool(cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	seedCtx, cancelSeed := config.WithTimeout(5 * time.Second)
	if err := db.EnsureAdminUser(seedCtx, pool, cfg); err != nil {
		log.Error("admin seed failed", "error", err)
	}
	cancelSeed()

	// with redis configured reset emails go through the queue and the
	// worker binary delivers them; without it we send inline, behind the
	// breaker so a dead provider cannot pin every request for seconds
	var mailer mail.Mailer
	var redisConn *redisclient.Client

	if cfg.RedisAddr != "" {
		redisConn = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancelPing := config.WithTimeout(2 * time.Second)
		err := redisConn.Ping(pingCtx)
		cancelPing()

		if err != nil {
			log.Error("redis unreachable, falling back to inline mail", "error", err)
			redisConn.Close()
			redisConn = nil
		}
	}

	if redisConn != nil {
		defer redisConn.Close()
		mailer = mail.NewQueuedMailer(redisConn)
		log.Info("mail delivery: queued via redis", "addr", cfg.RedisAddr)
	} else {
		mailer = mail.NewProtectedMailer(
			mail.NewLogMailer(cfg.MailFrom, log),
			mail.ProtectedMailerConfig{},
		)
		log.Info("mail delivery: inline")
	}

	reg := prometheus.NewRegistry()
	router := httpx.NewRouter(cfg, log, pool, mailer, reg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		return
	}
	log.Info("shutdown complete")
}
