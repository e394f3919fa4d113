package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/mfaguard/modules/mfa"
	"github.com/dmitrymomot/mfaguard/modules/mfa/pgstore"
	"github.com/dmitrymomot/mfaguard/pkg/config"
	"github.com/dmitrymomot/mfaguard/pkg/httpserver"
	"github.com/dmitrymomot/mfaguard/pkg/logger"
	"github.com/dmitrymomot/mfaguard/pkg/pg"
	"github.com/dmitrymomot/mfaguard/pkg/ratelimit"
	"github.com/dmitrymomot/mfaguard/pkg/redis"
	"github.com/dmitrymomot/mfaguard/pkg/secrets"
)

type appConfig struct {
	Logger  logger.Config
	Server  httpserver.Config
	PG      pg.Config
	Redis   redis.Config
	Secrets secrets.Config
	MFA     mfa.Config

	// Verification endpoints are throttled per user to blunt code guessing.
	VerifyRateLimit  int           `env:"MFA_VERIFY_RATE_LIMIT" envDefault:"10"`
	VerifyRateWindow time.Duration `env:"MFA_VERIFY_RATE_WINDOW" envDefault:"1m"`
}

func main() {
	genKey := flag.Bool("genkey", false, "print a fresh base64 data encryption key and exit")
	flag.Parse()

	if *genKey {
		key, err := secrets.GenerateEncodedKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(key)
		return
	}

	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.NewFromConfig(cfg.Logger, logger.WithAttr(slog.String("app", "mfaguard")))
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	cipher, err := secrets.NewCipher(cfg.Secrets)
	if err != nil {
		return err
	}

	svc, err := mfa.NewService(cfg.MFA, pgstore.New(pool), cipher, mfa.WithLogger(log))
	if err != nil {
		return err
	}

	healthchecks := []func(context.Context) error{pg.Healthcheck(pool)}

	// The limiter counts in redis when configured so replicas share state,
	// and falls back to an in-process store otherwise.
	var limiterStore ratelimit.Store
	if cfg.Redis.Enabled() {
		redisClient, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		limiterStore = ratelimit.NewRedisStore(redisClient, "mfaguard:ratelimit")
		healthchecks = append(healthchecks, redis.Healthcheck(redisClient))
	} else {
		memStore := ratelimit.NewMemoryStore()
		defer memStore.Close()
		limiterStore = memStore
	}

	limiter, err := ratelimit.NewFixedWindow(limiterStore, cfg.VerifyRateLimit, cfg.VerifyRateWindow)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)

	r.Get("/health", httpserver.HealthCheckHandler(log, healthchecks...))

	r.Group(func(r chi.Router) {
		r.Use(userIDMiddleware)
		r.Use(ratelimit.Middleware(limiter, userKey))
		r.Mount("/mfa", mfa.Router(svc, log))
	})

	srv := httpserver.New(cfg.Server, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// userIDMiddleware trusts the X-User-ID header set by the upstream auth
// layer. This service is never exposed directly to end users.
func userIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(mfa.SetUserIDToContext(r.Context(), userID)))
	})
}

// userKey scopes rate limiting per authenticated user. Requests without an
// identity are skipped here and rejected by the handlers instead.
func userKey(r *http.Request) string {
	userID, ok := mfa.UserIDFromContext(r.Context())
	if !ok {
		return ""
	}
	return userID.String()
}
