package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appsession "roulette-oracle/internal/app/session"
	"roulette-oracle/internal/config"
	"roulette-oracle/internal/logging"
	"roulette-oracle/internal/store"
	httptransport "roulette-oracle/internal/transport/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)
	defer logging.Close()

	agentParams, strategyParams, err := cfg.Engine.Resolve()
	if err != nil {
		log.Fatal().Err(err).Msg("engine config invalid")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Server.RedisURL != "" {
		rdb, err = store.NewRedisClient(ctx, cfg.Server.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis init failed")
		}
		defer rdb.Close()
	}

	st, err := openStore(ctx, cfg.Server, rdb)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Server.StoreBackend).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("store ping failed")
	}

	opts := appsession.Options{
		Agent:       agentParams,
		Strategy:    strategyParams,
		Seed:        cfg.Engine.Seed,
		EventBuffer: cfg.Server.EventBufferSize,
	}
	if rdb != nil && cfg.Server.SpinStream != "" {
		opts.Publisher = store.NewSpinPublisher(rdb, cfg.Server.SpinStream)
		log.Info().Str("stream", cfg.Server.SpinStream).Msg("spin stream publishing enabled")
	}
	mgr, err := appsession.NewManager(st, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("session manager init failed")
	}
	defer mgr.Close()

	r := httptransport.NewRouter(mgr, st, cfg.Server)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().
		Str("addr", cfg.Server.HTTPAddr).
		Str("store", cfg.Server.StoreBackend).
		Float64("alpha", agentParams.Alpha).
		Float64("gamma", agentParams.Gamma).
		Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

// openStore picks the snapshot backend. The redis backend shares rdb with
// the spin publisher.
func openStore(ctx context.Context, cfg config.ServerConfig, rdb *redis.Client) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		return store.NewPG(ctx, cfg.PostgresDSN)
	case config.StoreRedis:
		if rdb == nil {
			return nil, config.ErrMissingStoreDS
		}
		return store.NewRedis(rdb, cfg.SnapshotTTL), nil
	default:
		return store.NewMemory(), nil
	}
}
