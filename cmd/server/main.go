package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mkurbatov/jobhub/internal/auth"
	"github.com/mkurbatov/jobhub/internal/cache"
	"github.com/mkurbatov/jobhub/internal/config"
	"github.com/mkurbatov/jobhub/internal/es"
	"github.com/mkurbatov/jobhub/internal/events"
	"github.com/mkurbatov/jobhub/internal/handlers"
	"github.com/mkurbatov/jobhub/internal/hh"
	"github.com/mkurbatov/jobhub/internal/logging"
	authmw "github.com/mkurbatov/jobhub/internal/middleware/auth"
	loggingmw "github.com/mkurbatov/jobhub/internal/middleware/logging"
	"github.com/mkurbatov/jobhub/internal/repo"
	"github.com/mkurbatov/jobhub/internal/search"
	"github.com/mkurbatov/jobhub/internal/service"
	"github.com/mkurbatov/jobhub/internal/tokens"
	httpserver "github.com/mkurbatov/jobhub/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	config.MustNonEmpty(cfg.DB_HOST, "DB_HOST")
	config.MustNonEmpty(cfg.DB_NAME, "DB_NAME")
	config.MustNonEmpty(cfg.REDIS_ADDR, "REDIS_ADDR")

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	redis := cache.New(cache.Config{
		Addr:     cfg.REDIS_ADDR,
		DB:       cfg.REDIS_DB,
		Password: cfg.REDIS_PASSWORD,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redis.Ping(pingCtx); err != nil {
		cancelPing()
		log.Fatalf("redis ping: %v", err)
	}
	cancelPing()

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatal(err)
	}

	prod := events.NewProducer(cfg.KAFKA_BROKERS)

	private, public, err := cfg.LoadECKeys()
	if err != nil {
		log.Fatalf("jwt keys: %v", err)
	}
	codec := tokens.NewCodec(private, public, cfg.JWT_ISSUER, cfg.ACCESS_TOKEN_TTL, cfg.REFRESH_TOKEN_TTL)

	transports := auth.NewTransports(auth.TransportConfig{
		Method:        cfg.JWT_METHOD,
		HeaderPrefix:  cfg.JWT_HEADER_PREFIX,
		AccessHeader:  cfg.JWT_ACCESS_HEADER,
		RefreshHeader: cfg.JWT_REFRESH_HEADER,
		CookieDomain:  cfg.COOKIE_DOMAIN,
		SecureCookies: cfg.SECURE_COOKIES,
		AccessTTL:     cfg.ACCESS_TOKEN_TTL,
		RefreshTTL:    cfg.REFRESH_TOKEN_TTL,
	})
	store := auth.NewRevocationStore(redis)
	tokenAuth := auth.NewTokenAuth(codec, transports, store)

	userRepo := repo.NewUserRepo(db)
	vacancyRepo := repo.NewVacancyRepo(db)
	vacancyIndex := search.NewVacancyIndex(esClient, "vacancies")
	hhClient := hh.NewClient(cfg.HH_URL, cfg.HH_TOKEN)
	collector := service.NewCollector(hhClient, vacancyRepo, vacancyIndex, prod)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:    &handlers.AuthHandler{Users: userRepo, Auth: tokenAuth, Producer: prod},
		UserHandler:    &handlers.UserHandler{Users: userRepo, Producer: prod},
		VacancyHandler: &handlers.VacancyHandler{Vacancies: vacancyRepo, Index: vacancyIndex, Collector: collector},
		Refresh:        authmw.Refresh(tokenAuth),
		Authenticate:   authmw.Authenticate(tokenAuth, userRepo),
	}
	httpserver.Register(e, &deps)

	collectCtx, stopCollect := context.WithCancel(context.Background())
	if cfg.COLLECT_INTERVAL > 0 {
		go collector.Run(logging.IntoContext(collectCtx, logger), cfg.COLLECT_INTERVAL, hh.SearchParams{PerPage: 100})
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.SERVER_PORT),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	stopCollect()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := redis.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
