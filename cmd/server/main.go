package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/study_planner/internal/config"
	"github.com/Skotchmaster/study_planner/internal/events"
	"github.com/Skotchmaster/study_planner/internal/generation"
	"github.com/Skotchmaster/study_planner/internal/handlers"
	"github.com/Skotchmaster/study_planner/internal/logging"
	"github.com/Skotchmaster/study_planner/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/study_planner/internal/middleware/logging"
	"github.com/Skotchmaster/study_planner/internal/repo"
	"github.com/Skotchmaster/study_planner/internal/search"
	"github.com/Skotchmaster/study_planner/internal/service"
	"github.com/Skotchmaster/study_planner/internal/tokens"
	httpserver "github.com/Skotchmaster/study_planner/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	ctx := logging.IntoContext(context.Background(), logger)

	for _, name := range cfg.Missing() {
		logging.Critical(ctx, "config_missing", "env", name)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	db, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}
	store := &repo.GormRepo{DB: db}

	prod := events.New(cfg.KafkaBrokers)

	plans := &service.PlanService{
		Plans:     store,
		Generator: generation.NewClient(cfg.GenerationURL, cfg.GenerationTimeout),
		Events:    prod,
	}
	if cfg.ESURL != "" {
		idx, err := search.NewESIndex(search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("search index disabled", "error", err)
		} else {
			plans.Index = idx
		}
	}

	tk := tokens.NewService(cfg.JWTSecret)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Secure(),
		loggingmw.RequestLogger(logger),
	)

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			Auth:         &service.AuthService{Users: store, Tokens: tk, Events: prod},
			SecureCookie: cfg.RequireHTTPS,
			AppURL:       cfg.AppURL,
		},
		PlanHandler: &handlers.PlanHandler{Plans: plans},
		PageHandler: &handlers.PageHandler{},
		Gate:        auth.NewGate(tk, cfg.RequireHTTPS, cfg.AppURL),
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	// WriteTimeout must outlast the generation call.
	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server starting", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	go func() {
		<-quit
		log.Println("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db() error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
