// cmd/planner/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"travelease/internal/api"
	"travelease/internal/catalog"
	"travelease/internal/common/camunda"
	"travelease/internal/common/config"
	"travelease/internal/common/database"
	httpclient "travelease/internal/common/http"
	"travelease/internal/common/logger"
	"travelease/internal/common/observability"
	"travelease/internal/itinerary"
	"travelease/internal/lookup"
	"travelease/internal/oracle"
	"travelease/internal/planner"
	"travelease/internal/swipe"
	"travelease/internal/userstore"

	ai "travelease/internal/workers/planning/assemble-itinerary"
	bs "travelease/internal/workers/planning/build-shortlist"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// readiness collects the dependency pings behind /ready.
type readiness []func(ctx context.Context) error

func (r readiness) check(ctx context.Context) error {
	for _, ping := range r {
		if err := ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("Starting planner", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"catalog":     cfg.Catalog.Source,
	})

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()
	var ready readiness
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}()

	// --- Catalog ---
	source, err := catalogSource(ctx, cfg, log, &ready, &closers)
	if err != nil {
		zapLog.Fatal("catalog source init failed", zap.Error(err))
	}
	store, err := source.Load(ctx)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}
	log.Info("Catalog loaded", map[string]interface{}{
		"source":    source.Name(),
		"locations": len(store.Locations()),
	})

	// --- State stores ---
	var redisClient *database.RedisClient
	if cfg.NeedsRedis() {
		redisClient = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		closers = append(closers, redisClient.Close)
		ready = append(ready, redisClient.Ping)
		log.Info("Redis connected successfully", nil)
	}

	ttl := time.Duration(cfg.Sessions.TTL) * time.Second
	var sessions swipe.Store = swipe.NewMemoryStore()
	if cfg.Sessions.Backend == config.BackendRedis {
		sessions = swipe.NewRedisStore(redisClient.Client, ttl)
	}

	var users userstore.Store
	switch cfg.UserStore.Backend {
	case config.BackendRedis:
		users = userstore.NewRedisStore(redisClient.Client, 0)
	case config.BackendMemory:
		users = userstore.NewMemoryStore()
	default:
		users = userstore.NewFileStore(cfg.UserStore.Path, log)
	}

	// --- Oracle and lookups ---
	var orc oracle.Oracle
	if cfg.Oracle.BaseURL != "" {
		orc = oracle.NewHTTPClient(oracle.ClientConfig{
			BaseURL:            cfg.Oracle.BaseURL,
			APIKey:             cfg.Oracle.APIKey,
			Model:              cfg.Oracle.Model,
			MaxRetries:         cfg.Oracle.MaxRetries,
			MaxTokens:          cfg.Oracle.MaxTokens,
			Temperature:        cfg.Oracle.Temperature,
			BreakerMaxFailures: cfg.Oracle.Breaker.MaxFailures,
			BreakerOpenTimeout: config.GetDuration(cfg.Oracle.Breaker.OpenTimeout),
		}, httpclient.NewClient(config.GetDuration(cfg.Oracle.Timeout)), log)
	} else {
		log.Warn("No oracle configured, every request takes the deterministic fallback", nil)
	}

	adapter := oracle.NewAdapter(orc, oracle.AdapterConfig{
		Timeout:        config.GetDuration(cfg.Oracle.Timeout),
		MinInspections: cfg.Oracle.MinInspections,
		FallbackK:      cfg.Oracle.FallbackK,
	}, log, obs)

	var lk lookup.Service = lookup.Static{}
	if cfg.Lookup.BaseURL != "" {
		lk = lookup.NewWebSearch(lookup.Config{
			BaseURL:  cfg.Lookup.BaseURL,
			APIKey:   cfg.Lookup.APIKey,
			EngineID: cfg.Lookup.EngineID,
			Timeout:  config.GetDuration(cfg.Lookup.Timeout),
		}, log)
	}

	// --- Pipeline ---
	svc := planner.NewService(planner.Config{ShortlistLimit: cfg.Oracle.ShortlistLimit}, planner.Dependencies{
		Catalog:   store,
		Adapter:   adapter,
		Assembler: itinerary.NewAssembler(store, adapter, lk, users, log),
		Swipes:    swipe.NewManager(sessions, log),
		Users:     users,
		Obs:       obs,
		Logger:    log,
	})

	// --- Camunda workers ---
	var pool *camunda.Pool
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		closers = append(closers, zeebe.Close)
		ready = append(ready, zeebe.HealthCheck)

		shortlistWorker, err := bs.NewHandler(bs.HandlerOptions{AppConfig: cfg, Camunda: zeebe, Planner: svc, Logger: log})
		if err != nil {
			zapLog.Fatal("failed to create build-shortlist handler", zap.Error(err))
		}
		itineraryWorker, err := ai.NewHandler(ai.HandlerOptions{AppConfig: cfg, Camunda: zeebe, Planner: svc, Logger: log})
		if err != nil {
			zapLog.Fatal("failed to create assemble-itinerary handler", zap.Error(err))
		}

		pool = camunda.NewPool(log)
		pool.Add(shortlistWorker)
		pool.Add(itineraryWorker)
		if err := pool.Start(); err != nil {
			zapLog.Fatal("worker registration failed", zap.Error(err))
		}
	}

	// --- HTTP ---
	router := api.NewRouter(svc, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		CookieName:  cfg.Server.CookieName,
		RateLimit:   cfg.Server.RateLimit,
		Ready:       ready.check,
	}, log)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, draining requests...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if pool != nil {
		pool.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Planner stopped gracefully", nil)
}

// catalogSource opens the backing store the catalog is read from.
func catalogSource(ctx context.Context, cfg *config.Config, log logger.Logger, ready *readiness, closers *[]func() error) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case config.CatalogSourceCSV:
		return catalog.NewCSVSource(cfg.Catalog.CSV.HousingPath, cfg.Catalog.CSV.CuisinePath, cfg.Catalog.CSV.ExperiencePath, log), nil

	case config.CatalogSourcePostgres:
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, pg.Close)
		*ready = append(*ready, pg.Ping)
		return catalog.NewPostgresSource(pg.DB, log), nil

	case config.CatalogSourceElasticsearch:
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		*ready = append(*ready, es.Ping)
		return catalog.NewElasticsearchSource(es.Client, catalog.Indexes{
			Housing:    cfg.Catalog.Indexes.Housing,
			Cuisine:    cfg.Catalog.Indexes.Cuisine,
			Experience: cfg.Catalog.Indexes.Experience,
		}, log), nil

	default:
		return catalog.NewMemorySource(), nil
	}
}
