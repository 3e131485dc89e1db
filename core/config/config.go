package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cache   sync.Map // reflect.Type -> parsed value
	envOnce sync.Once
)

// Load parses environment variables into cfg using its `env` struct tags.
// A .env file in the working directory is loaded once per process before
// the first parse; a missing file is not an error. Each configuration
// type is parsed once and cached.
func Load[T any](cfg *T) error {
	envOnce.Do(func() {
		// Absence of a .env file simply means the environment is already
		// populated.
		_ = godotenv.Load()
	})

	key := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(key); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: failed to parse %T: %w", *cfg, err)
	}

	// A concurrent loader may have won the race; converge on its value.
	cached, _ := cache.LoadOrStore(key, *cfg)
	*cfg = cached.(T)
	return nil
}

// MustLoad is Load but panics on failure. Intended for application
// startup where a broken environment should halt the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
