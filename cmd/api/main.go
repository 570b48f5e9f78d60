package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"reviewhub/internal/adapters/blobstore"
	server "reviewhub/internal/adapters/http_server"
	"reviewhub/internal/adapters/observability"
	redisad "reviewhub/internal/adapters/redis"
	"reviewhub/internal/adapters/token"
	"reviewhub/internal/app"
	"reviewhub/internal/domain"
	"reviewhub/internal/shared"
	"reviewhub/internal/storage/memory"
	mysqlrepo "reviewhub/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	// A nil interface keeps the stats cache off.
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; stats cache disabled")
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	var blobs domain.BlobStore
	if cfg.Blob.Enabled() {
		bc, err := blobstore.New(blobstore.Config{
			BaseURL:   cfg.Blob.BaseURL,
			CloudName: cfg.Blob.CloudName,
			APIKey:    cfg.Blob.APIKey,
			APISecret: cfg.Blob.APISecret,
			RPS:       cfg.Blob.RPS,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("blob store init failed")
		}
		blobs = bc
	}

	tokens, err := token.New(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("JWT_SECRET is required")
	}

	// deps
	h := &server.Handlers{
		Accounts:  app.NewAccountService(store, tokens),
		Catalog:   app.NewCatalogService(store, cache),
		Reviews:   app.NewReviewService(store, cache),
		Stats:     app.NewStatsService(store, cache, cfg.StatsCacheTTL),
		Discovery: app.NewDiscoveryService(store, nil),
		Media:     app.NewMediaService(blobs),
	}

	// http
	srv := server.New(server.Options{
		Timeout:     cfg.RequestTimeout,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

func openStore(ctx context.Context, cfg shared.Config) (domain.Store, func()) {
	if cfg.StoreDriver == "memory" {
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.New(), func() {}
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	return mysqlrepo.New(db), func() { _ = db.Close() }
}
