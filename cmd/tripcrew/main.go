// README: Entry point; loads config, wires the LLM provider and planner, serves the web form and API.
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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tripcrew/internal/ai"
	"tripcrew/internal/config"
	httptransport "tripcrew/internal/http"
	"tripcrew/internal/infra"
	"tripcrew/internal/maps"
	"tripcrew/internal/modules/aiusage"
	"tripcrew/internal/modules/session"
	"tripcrew/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			log.Fatalf("%v. Please set it in your environment or .env file", err)
		}
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, closeLLM, err := ai.NewCompleter(ctx, cfg.LLM.Provider, cfg.LLM.Options())
	if err != nil {
		logger.Fatal("llm init", zap.Error(err))
	}
	defer closeLLM()

	// Geocoding is optional; a nil interface makes the planner skip it.
	var resolver service.CityResolver
	if cfg.Maps.APIKey != "" {
		geo, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		resolver = geo
	}

	var quota *aiusage.Service
	if cfg.Redis.Addr != "" {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			logger.Fatal("redis init", zap.Error(err))
		}
		defer redisClient.Close()
		quota = aiusage.NewService(aiusage.NewStore(redisClient), cfg.Quota.RunsPerDay)
	} else {
		logger.Info("TRIPCREW_REDIS_ADDR not set; daily run quota disabled")
	}

	planner := service.NewTripPlanner(llm, resolver, logger, service.PlannerOptions{
		BudgetFromItinerary: cfg.Planner.BudgetFromItinerary,
	})

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Planner:        planner,
		Sessions:       session.NewStore(cfg.Session.TTL),
		Quota:          quota,
		Logger:         logger,
		RunTimeout:     cfg.Planner.RunTimeout,
		SessionTTL:     cfg.Session.TTL,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	routes, err := handler.Routes()
	if err != nil {
		logger.Fatal("http init", zap.Error(err))
	}

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: routes}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("provider", cfg.LLM.Provider),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server stopped")
}
