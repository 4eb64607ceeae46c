package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/example/review-platform/internal/identity"
	"github.com/example/review-platform/internal/lookup"
	"github.com/example/review-platform/internal/platform/auth"
	"github.com/example/review-platform/internal/platform/config"
	"github.com/example/review-platform/internal/platform/db"
	"github.com/example/review-platform/internal/platform/events"
	"github.com/example/review-platform/internal/platform/httpserver"
	"github.com/example/review-platform/internal/platform/logging"
	"github.com/example/review-platform/internal/platform/natsconn"
	"github.com/example/review-platform/internal/platform/run"
	"github.com/example/review-platform/internal/posts"
	"github.com/example/review-platform/internal/reviews"
	"github.com/example/review-platform/internal/reviews/worker"
	"github.com/example/review-platform/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	pool := initPool(cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	var (
		reviewStore   reviews.Store
		postStore     posts.Store
		identityStore identity.Store
	)
	if pool != nil {
		reviewStore = reviews.NewPostgresStore(pool)
		postStore = posts.NewPostgresStore(pool)
		identityStore = identity.NewPostgresStore(pool)
		log.Info("stores: postgres")
	} else {
		reviewStore = reviews.NewInMemoryStore()
		postStore = posts.NewInMemoryStore()
		identityStore = identity.NewInMemoryStore()
		log.Warn("stores: in-memory (development only)")
	}

	// NATS is optional: without it events are dropped and reconciliation is
	// driven by the next successful write instead.
	var pub *events.Publisher
	nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL})
	if err != nil {
		log.Warn("nats connect failed, events disabled", zap.Error(err))
		nc = nil
	} else {
		if js, jsErr := nc.JetStream(); jsErr == nil {
			pub = events.New(js, log)
		} else {
			log.Warn("jetstream unavailable, events disabled", zap.Error(jsErr))
		}
	}

	reviewSvc := reviews.NewService(reviewStore, pub, log)
	postSvc := posts.NewService(postStore, pub, log)
	identitySvc := identity.NewService(identityStore, identity.TokenService{
		Secret: []byte(cfg.JWTSecret),
	}, log)

	deps := web.Deps{
		Identity: identitySvc,
		Reviews:  reviewSvc,
		Posts:    postSvc,
		Registry: lookup.NewRegistry(cfg.Lookup),
		Cache:    lookup.NewSearchCache(cfg.Lookup.CacheTTL, nc),
		Verifier: auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)},
		Log:      log,
	}

	srv := httpserver.New(httpserver.Options{
		Addr:        cfg.HTTP.Addr,
		ServiceName: cfg.ServiceName,
		Logger:      log,
		Router:      web.NewRouter(deps),
	})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if nc != nil {
			rec := worker.NewReconciler(reviewSvc, log)
			if err := rec.Start(ctx, nc); err != nil {
				log.Warn("reconciler disabled", zap.Error(err))
			}
			defer nc.Close()
		}

		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initPool opens the shared Postgres pool. In production a reachable database
// is mandatory; elsewhere a nil pool selects the in-memory stores.
func initPool(cfg config.AppConfig, log *zap.Logger) *pgxpool.Pool {
	if cfg.DatabaseURL == "" {
		if cfg.Production() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("DATABASE_URL not set")
		return nil
	}

	pool, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		if cfg.Production() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable", zap.Error(err))
		return nil
	}
	return pool
}
