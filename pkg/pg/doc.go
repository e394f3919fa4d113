// Package pg wires PostgreSQL connectivity for the application: pgxpool
// construction with startup retries, goose migration running, error
// classification helpers, and a health check.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil { ... }
//
// The error helpers (IsNotFoundError, IsDuplicateKeyError) let storage
// adapters translate driver errors into domain errors without leaking pgx
// types upward.
package pg
