package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/shoppyglobe/internal/auth"
	"github.com/ahinestrog/shoppyglobe/internal/cart"
	"github.com/ahinestrog/shoppyglobe/internal/catalog"
	"github.com/ahinestrog/shoppyglobe/internal/config"
	"github.com/ahinestrog/shoppyglobe/internal/events"
	"github.com/ahinestrog/shoppyglobe/internal/health"
	"github.com/ahinestrog/shoppyglobe/internal/httpapi"
	"github.com/ahinestrog/shoppyglobe/internal/logging"
	"github.com/ahinestrog/shoppyglobe/internal/observability"
	"github.com/ahinestrog/shoppyglobe/internal/storage"
	"github.com/ahinestrog/shoppyglobe/internal/user"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.Setup(cfg.ServiceEnv, cfg.LogLevel)
	cfg.Log()
	must(cfg.Validate())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTracing, err := observability.Setup(ctx, cfg.OtelEndpoint, cfg.ServiceEnv)
	must(err)

	// Storage
	db, err := storage.Open(ctx, cfg.DBDriver, cfg.DBPath)
	must(err)
	defer db.Close()

	cartRepo := cart.NewSQLiteRepo(db)
	productRepo := catalog.NewSQLiteRepo(db)
	userRepo := user.NewSQLiteRepo(db)
	must(cartRepo.Init(ctx))
	must(productRepo.Init(ctx))
	must(userRepo.Init(ctx))

	if cfg.SeedOnStart {
		_, err := catalog.Seed(ctx, productRepo)
		must(err)
	}
	log.Info().
		Str("driver", cfg.DBDriver).
		Str("path", cfg.DBPath).
		Str("size", humanize.Bytes(uint64(storage.Size(cfg.DBPath)))).
		Msg("database ready")

	// Rabbit
	pub, err := events.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq not available, continuing without events")
		pub = nil
	}
	defer pub.Close()

	// Services
	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	must(err)
	products, err := catalog.NewService(productRepo, cfg.ProductCacheSize)
	must(err)
	store := cart.NewStore(cartRepo,
		cart.WithCartID(cfg.CartID),
		cart.WithMaxAttempts(cfg.CartMaxAttempts),
		cart.WithEvents(pub),
	)
	accounts := user.NewService(userRepo, tokens, user.WithEvents(pub))

	handler, err := httpapi.NewHandler(httpapi.Deps{
		Cart:        store,
		Products:    products,
		Accounts:    accounts,
		Tokens:      tokens,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})
	must(err)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// gRPC health
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	must(err)
	healthSrv := health.NewServer()

	errCh := make(chan error, 2)
	go func() { errCh <- healthSrv.Serve(lis) }()
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	healthSrv.SetServing()

	select {
	case <-ctx.Done():
		log.Warn().Msg("shutting down...")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed, shutting down")
	}
	healthSrv.SetNotServing()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	healthSrv.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown")
	}
	log.Info().Msg("bye")
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
