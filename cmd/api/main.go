package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/mashability/internal/adapters/analysis"
	"github.com/ewilliams-labs/mashability/internal/adapters/postgres"
	"github.com/ewilliams-labs/mashability/internal/adapters/rest"
	"github.com/ewilliams-labs/mashability/internal/adapters/sqlite"
	"github.com/ewilliams-labs/mashability/internal/config"
	"github.com/ewilliams-labs/mashability/internal/core/ports"
	"github.com/ewilliams-labs/mashability/internal/core/services"
	"github.com/ewilliams-labs/mashability/internal/logger"
	"github.com/ewilliams-labs/mashability/internal/worker"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			provideLogger,
			provideStorage,
			provideAnalysisClient,
			provideService,
			providePool,
			provideHandler,
			NewHTTPServer,
		),
		fx.WithLogger(func(log *zap.SugaredLogger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Desugar()}
		}),
		fx.Invoke(func(*http.Server) {}),
	).Run()
}

func provideLogger(cfg config.Config) (*zap.SugaredLogger, error) {
	return logger.New(cfg.LogLevel)
}

type storageOut struct {
	fx.Out

	Songs   ports.SongRepository
	Weights ports.WeightsRepository
	Pinger  ports.Pinger `name:"storage"`
}

type repository interface {
	ports.SongRepository
	ports.WeightsRepository
	ports.Pinger
	Close() error
}

func provideStorage(lc fx.Lifecycle, cfg config.Config, log *zap.SugaredLogger) (storageOut, error) {
	var repo repository
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		a, err := sqlite.NewAdapter(cfg.SQLitePath)
		if err != nil {
			return storageOut{}, err
		}
		repo = a
	case config.DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a, err := postgres.NewAdapter(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return storageOut{}, err
		}
		repo = a
	default:
		return storageOut{}, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
	log.Infow("storage ready", "driver", cfg.StorageDriver)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return repo.Close()
		},
	})
	return storageOut{Songs: repo, Weights: repo, Pinger: repo}, nil
}

func provideAnalysisClient(cfg config.Config, log *zap.SugaredLogger) *analysis.Client {
	hc := analysis.NewHTTPClient(context.Background(), analysis.Auth{
		Token:        cfg.AnalysisToken,
		ClientID:     cfg.AnalysisClientID,
		ClientSecret: cfg.AnalysisClientSecret,
		TokenURL:     cfg.AnalysisTokenURL,
	}, cfg.AnalysisTimeout)

	return analysis.NewClient(cfg.AnalysisURL,
		analysis.WithHTTPClient(hc),
		analysis.WithRetry(cfg.AnalysisMaxRetries, cfg.AnalysisBackoff),
		analysis.WithLogger(log.Named("analysis")),
	)
}

func provideService(
	client *analysis.Client,
	songs ports.SongRepository,
	weights ports.WeightsRepository,
	cfg config.Config,
	log *zap.SugaredLogger,
) *services.Compatibility {
	return services.NewCompatibility(client, songs, weights, cfg.Weights(), log.Named("service"))
}

func providePool(lc fx.Lifecycle, svc *services.Compatibility, cfg config.Config, log *zap.SugaredLogger) *worker.Pool {
	pool := worker.NewPool(svc, log.Named("worker"), cfg.Workers, cfg.QueueSize, cfg.AnalysisTimeout)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pool.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			pool.Stop()
			return nil
		},
	})
	return pool
}

type handlerIn struct {
	fx.In

	Service  *services.Compatibility
	Pool     *worker.Pool
	Analysis *analysis.Client
	Storage  ports.Pinger `name:"storage"`
	Log      *zap.SugaredLogger
}

func provideHandler(in handlerIn) http.Handler {
	h := rest.NewHandler(in.Service, in.Pool, in.Log.Named("rest"), map[string]ports.Pinger{
		"storage":  in.Storage,
		"analysis": in.Analysis,
	})
	return rest.RequestLogger(in.Log.Named("http"), h)
}

func NewHTTPServer(lc fx.Lifecycle, cfg config.Config, handler http.Handler, log *zap.SugaredLogger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Infow("starting HTTP server", "addr", srv.Addr)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorw("http server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
