// Package logger builds configured log/slog loggers.
//
// Components in this repository accept a *slog.Logger rather than creating
// their own; main constructs one here and injects it. JSON output is the
// default so production logs are machine-parseable; text output is a
// development convenience.
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithFormat(logger.FormatText),
//		logger.WithAttr(slog.String("app", "mfaguard")),
//	)
//
// Or from environment configuration:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.NewFromConfig(cfg)
package logger
