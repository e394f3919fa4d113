// Package httpserver wraps net/http.Server with environment-driven
// configuration and graceful shutdown on context cancellation or
// SIGINT/SIGTERM.
//
//	var cfg httpserver.Config
//	config.MustLoad(&cfg)
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server failed", "error", err)
//	}
//
// HealthCheckHandler builds probe endpoints from dependency check functions
// such as pg.Healthcheck and redis.Healthcheck.
package httpserver
