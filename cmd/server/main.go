// main wires the platform, stores and services, mounts the HTTP router, and
// owns the process lifecycle. Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"gatehouse/internal/audit"
	"gatehouse/internal/auth/identity"
	"gatehouse/internal/auth/service"
	"gatehouse/internal/auth/session"
	"gatehouse/internal/auth/store"
	"gatehouse/internal/graphql"
	"gatehouse/internal/lockout"
	"gatehouse/internal/platform/config"
	"gatehouse/internal/platform/httpserver"
	"gatehouse/internal/platform/logger"
	"gatehouse/internal/platform/metrics"
	platformredis "gatehouse/internal/platform/redis"
	httptransport "gatehouse/internal/transport/http"
)

const schema = `
type Query {
  me: String @requireAuth
  status: String @skipAuth
}
`

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.DevMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres when configured, in-memory otherwise (dev and tests).
	var users store.UserStore
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := store.Migrate(ctx, db); err != nil {
			log.Error("migrate database", "error", err)
			os.Exit(1)
		}
		users = store.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory user store")
		users = store.NewInMemory()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	var lockoutStore lockout.Store
	if redisClient != nil {
		defer redisClient.Close()
		lockoutStore = lockout.NewRedisStore(redisClient)
	} else {
		lockoutStore = lockout.NewMemoryStore()
	}

	var auditor audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		auditor, err = audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
	} else {
		auditor = audit.NopPublisher{}
	}
	defer auditor.Close()

	m := metrics.New()
	guard := lockout.New(lockoutStore, lockout.DefaultPolicy(), log)

	svcCfg := service.DefaultConfig()
	svcCfg.Login.Expires = cfg.Session.Expires
	svcCfg.ForgotPassword.Expires = cfg.Session.ResetTTL
	svc := service.New(users, svcCfg, log,
		service.WithMetrics(m),
		service.WithLoginGuard(guard),
		service.WithAuditor(auditor),
	)

	codec := session.NewCodec(session.Config{
		Secret:       cfg.Session.Secret,
		CookieName:   cfg.Session.CookieName,
		CookieDomain: cfg.Session.CookieDomain,
		DevMode:      cfg.DevMode,
	})
	resolver := identity.NewResolver(users, identity.WithEmail(), identity.WithRoles())

	engine, err := graphql.NewEngine(schema, log)
	if err != nil {
		log.Error("load graphql schema", "error", err)
		os.Exit(1)
	}
	if err := registerResolvers(engine); err != nil {
		log.Error("register resolvers", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Auth:     httptransport.NewAuthHandler(svc, codec, log).WithAuditor(auditor),
		GraphQL:  httptransport.NewGraphQLHandler(engine, log),
		Codec:    codec,
		Resolver: resolver,
		Metrics:  m,
		Logger:   log,
		Health: func() error {
			if db != nil {
				if err := db.PingContext(ctx); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(ctx)
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting gatehouse", "addr", cfg.Addr, "dev_mode", cfg.DevMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
