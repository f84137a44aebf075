package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rustamli/newsdesk-admin/internal/auth"
	"github.com/rustamli/newsdesk-admin/internal/authz"
	"github.com/rustamli/newsdesk-admin/internal/config"
	"github.com/rustamli/newsdesk-admin/internal/database"
	"github.com/rustamli/newsdesk-admin/internal/handler"
	"github.com/rustamli/newsdesk-admin/internal/metrics"
	"github.com/rustamli/newsdesk-admin/internal/middleware"
	"github.com/rustamli/newsdesk-admin/internal/presence"
	"github.com/rustamli/newsdesk-admin/internal/queue"
	"github.com/rustamli/newsdesk-admin/internal/repository"
	"github.com/rustamli/newsdesk-admin/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()
	exec := database.NewExecutor(db)

	rdb := config.NewRedisClient()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	tracker := presence.New(cfg.PresenceTTL, cfg.PresenceSweep)
	tracker.OnCount(collector.SetPresenceEntries)
	tracker.Start()
	defer tracker.Stop()

	userRepo := repository.NewUserRepo(db, exec)
	postRepo := repository.NewPostRepo(db, exec)
	categoryRepo := repository.NewCategoryRepo(db, exec)
	adRepo := repository.NewAdRepo(db, exec)
	wikiRepo := repository.NewWikiRepo(db, exec)

	issuer := auth.NewIssuer(cfg.AuthSecret, cfg.SessionTTL)
	az := authz.New(userRepo)

	guard := middleware.SessionGuard(middleware.GuardConfig{
		Issuer:    issuer,
		LoginPath: cfg.LoginPath,
		OnDenial:  collector.RecordDenial,
	})

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Guard:     guard,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		Metrics:   collector.Middleware(),
		MetricsFn: metrics.Handler(reg),

		Auth:       handler.NewAuthHandler(issuer, userRepo),
		Users:      handler.NewUserHandler(userRepo, az, cfg.BcryptCost),
		Posts:      handler.NewPostHandler(postRepo, categoryRepo, az),
		Categories: handler.NewCategoryHandler(categoryRepo, az),
		Ads:        handler.NewAdHandler(adRepo, az),
		Wiki:       handler.NewWikiHandler(wikiRepo, az),
		Editing:    handler.NewEditingHandler(tracker),
	})

	// The purge consumer reconnects forever on its own; it only needs to
	// be started once.
	go func() {
		if err := queue.StartPurgeConsumer(); err != nil {
			log.Printf("purge-consumer: stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
