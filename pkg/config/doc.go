// Package config loads typed configuration structs from environment
// variables using `env` struct tags, with optional .env file support for
// local development.
//
// Each component of the application declares its own small Config struct
// (database, HTTP server, MFA module, encryption key) and main loads them
// explicitly at startup, so there is no hidden global configuration state
// and every component can be constructed with synthetic configs in tests.
//
//	var pgCfg pg.Config
//	config.MustLoad(&pgCfg)
package config
