package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/thiagojorgelins/to-do-list/internal/config"
	"github.com/thiagojorgelins/to-do-list/internal/crypto"
	"github.com/thiagojorgelins/to-do-list/internal/handler"
	"github.com/thiagojorgelins/to-do-list/internal/logger"
	"github.com/thiagojorgelins/to-do-list/internal/notify"
	"github.com/thiagojorgelins/to-do-list/internal/repository"
	"github.com/thiagojorgelins/to-do-list/internal/repository/memory"
	"github.com/thiagojorgelins/to-do-list/internal/service"
)

const serviceName = "todo-api"

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logger.New(serviceName, cfg.LogLevel)
	if envErr != nil {
		log.Warn("no .env file found, using environment variables")
	}

	ctx := context.Background()

	var (
		users service.UserStore
		tasks service.TaskStore
	)
	if cfg.DBDriver == "memory" {
		log.Warn("using in-memory storage, data is lost on restart")
		users = memory.NewUserStore()
		tasks = memory.NewTaskStore()
	} else {
		db, err := repository.NewDB(ctx, cfg.DBDriver, cfg.DatabaseDSN, log)
		if err != nil {
			log.WithError(err).Fatal("database setup failed")
		}
		defer db.Close()
		users = repository.NewUserRepository(db)
		tasks = repository.NewTaskRepository(db)
	}

	tokens := crypto.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry, crypto.WithTokenLogger(log))

	authOpts := []service.AuthOption{}
	if cfg.RedisURL != "" {
		client, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, identity cache disabled")
		} else {
			defer client.Close()
			authOpts = append(authOpts, service.WithIdentityCache(repository.NewUserCache(client, cfg.UserCacheTTL)))
		}
	}
	if cfg.SendGridAPIKey != "" {
		authOpts = append(authOpts, service.WithNotifier(notify.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.MailFrom)))
	} else {
		log.Info("SENDGRID_API_KEY not set, welcome e-mails disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := handler.NewRouter(handler.Deps{
		Auth:               service.NewAuthService(users, tokens, log, authOpts...),
		Tasks:              service.NewTaskService(tasks),
		Log:                log,
		Registry:           registry,
		AuthRateLimitRPS:   cfg.AuthRateLimitRPS,
		AuthRateLimitBurst: cfg.AuthRateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env, "db_driver": cfg.DBDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced shutdown")
		return
	}

	log.Info("server stopped")
}
