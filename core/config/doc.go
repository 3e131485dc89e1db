// Package config provides type-safe environment variable loading with
// caching using Go generics. Each configuration type is loaded once and
// cached for subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct
// fields.
//
// Basic usage:
//
//	import (
//		"github.com/dmitrymomot/partsave/core/config"
//		"github.com/dmitrymomot/partsave/core/save"
//	)
//
//	var cfg save.Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	// Or panic on failure (useful for startup)
//	config.MustLoad(&cfg)
//
// # Caching behavior
//
// Each configuration type is loaded only once per application lifetime;
// later loads of the same type return the cached value. Different types
// are cached independently.
package config
