package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-ledger/internal/account"
	"go-pos-ledger/internal/ai"
	"go-pos-ledger/internal/auth"
	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/events"
	"go-pos-ledger/internal/handlers"
	"go-pos-ledger/internal/ledger"
	"go-pos-ledger/internal/logging"
	"go-pos-ledger/internal/metrics"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:  "pos-ledger",
		Usage: "multi-tenant point-of-sale ledger",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create tables or indexes for the configured store and exit",
				Action: migrate,
			},
		},
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		zap.L().Error("pos_ledger_exit", zap.Error(err))
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, dotenv, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.NewLogger(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "build logger")
	}
	zap.ReplaceGlobals(log)
	if !dotenv {
		log.Info("dotenv_not_found")
	}
	return cfg, log, nil
}

func migrate(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := openStore(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()
	log.Info("migration_complete", zap.String("driver", cfg.StoreDriver))
	return nil
}

func serve(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	m := metrics.New(prometheus.DefaultRegisterer)

	var publisher interface {
		ledger.EventPublisher
		Close() error
	} = events.Nop{}
	if client := events.NewClient(cfg.KafkaBrokers); client.Enabled() {
		publisher = events.NewPublisher(client.NewWriter(cfg.KafkaTopic))
		log.Info("kafka_publisher_enabled", zap.Strings("brokers", client.Brokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("kafka_publisher_close_failed", zap.Error(err))
		}
	}()

	l := ledger.New(st.store, st.store, ledger.Options{Metrics: m, Events: publisher})
	tokens := auth.NewTokenManager(cfg.AccessKeySecret, cfg.AccessTokenTTL)
	accounts := account.NewService(st.store, tokens)

	var assistant handlers.Assistant
	if cfg.GeminiAPIKey != "" {
		assistant = ai.NewAgent(cfg.GeminiAPIKey, cfg.GeminiModel, l)
	} else {
		log.Info("assistant_disabled")
	}

	router := handlers.NewRouter(handlers.New(l, accounts, assistant, cfg.IsDev()), handlers.RouterConfig{
		Logger:            log,
		Metrics:           m,
		Tokens:            tokens,
		CORSOrigins:       cfg.CORSOrigins,
		AllowRegistration: cfg.AllowRegistration,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http_server_start", zap.String("addr", server.Addr), zap.String("driver", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return pkgerrors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return pkgerrors.Wrap(err, "http server shutdown")
		}
		log.Info("http_server_stopped")
		return nil
	})
	return g.Wait()
}
