package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/nbp-rate-service/internal/application/service"
	"github.com/damon-houk/nbp-rate-service/internal/config"
	"github.com/damon-houk/nbp-rate-service/internal/domain/repository"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/api"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/cache"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/db"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/handler"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Format, logger.ParseLevel(cfg.Log.Level), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefaultLogger(log)
	if z, ok := log.(*logger.ZapLogger); ok {
		defer z.Sync()
	}

	log.Info("Starting NBP rate service", map[string]interface{}{
		"port":          cfg.Server.Port,
		"nbp_base_url":  cfg.NBP.BaseURL,
		"base_currency": cfg.NBP.BaseCurrency,
		"cache_enabled": cfg.Cache.Enabled,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	client := api.NewNBPAPIClient(cfg.NBP, api.WithLogger(log.WithField("component", "nbp_api")), api.WithMetrics(appMetrics))

	var repo repository.RateRepository = db.NewNBPRateRepository(client, cfg.NBP.BaseCurrency, log)

	if cfg.Cache.Enabled {
		if err := os.MkdirAll(cfg.Cache.DBPath, 0755); err != nil {
			log.Fatal("Failed to create database directory", map[string]interface{}{
				"path":  cfg.Cache.DBPath,
				"error": err.Error(),
			})
		}

		badgerDB, err := db.OpenBadger(cfg.Cache.DBPath)
		if err != nil {
			log.Fatal("Failed to open database", map[string]interface{}{
				"path":  cfg.Cache.DBPath,
				"error": err.Error(),
			})
		}
		defer func() {
			if err := badgerDB.Close(); err != nil {
				log.Error("Error closing BadgerDB", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()

		repo = cache.NewCachedRateRepository(
			repo,
			cache.NewRatesCache(cfg.Cache.RatesTTL),
			db.NewBadgerSeriesStore(badgerDB, cfg.Cache.SeriesTTL),
			appMetrics,
			log,
		)
	}

	rateService := service.NewRateService(repo, log)
	conversionService := service.NewConversionService(repo, log)

	rateHandler := handler.NewRateHandler(rateService, cfg.NBP.BaseCurrency, log)
	conversionHandler := handler.NewConversionHandler(conversionService, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.NewRouter(rateHandler, conversionHandler, log, appMetrics, reg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Shutting down server", map[string]interface{}{"signal": sig.String()})
	case err := <-serverErr:
		log.Error("HTTP server error", map[string]interface{}{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Server exited", nil)
}
