package save

import (
	"fmt"
	"strings"
)

// Config is the environment-based configuration surface for the save
// pipeline. Load it with core/config and convert to a Builder:
//
//	var cfg save.Config
//	config.MustLoad(&cfg)
//	res := cfg.Save(src)
type Config struct {
	// SizeLimit is the maximum bytes persisted per file field; 0 disables.
	SizeLimit int64 `env:"SAVE_SIZE_LIMIT" envDefault:"0"`

	// CountLimit is the maximum file fields processed per request; 0
	// disables.
	CountLimit int `env:"SAVE_COUNT_LIMIT" envDefault:"0"`

	// MemoryThreshold is the byte cutoff below which content stays in
	// memory (default 8 MiB).
	MemoryThreshold int64 `env:"SAVE_MEMORY_THRESHOLD" envDefault:"8388608"`

	// TextPolicy is one of "try", "force", or "ignore".
	TextPolicy string `env:"SAVE_TEXT_POLICY" envDefault:"try"`

	// Dir is the permanent destination directory; empty means a fresh
	// temporary directory per request.
	Dir string `env:"SAVE_DIR"`
}

// Builder converts the configuration to a save builder.
func (c Config) Builder() (Builder, error) {
	b := New().
		SizeLimit(c.SizeLimit).
		CountLimit(c.CountLimit).
		MemoryThreshold(c.MemoryThreshold)

	switch strings.ToLower(c.TextPolicy) {
	case "", "try":
		b = b.TryText()
	case "force":
		b = b.ForceText()
	case "ignore":
		b = b.IgnoreText()
	default:
		return Builder{}, fmt.Errorf("%w: %q", ErrUnknownTextPolicy, c.TextPolicy)
	}
	return b, nil
}

// Save runs a whole-request save against the configured destination: Dir
// when set, a fresh temporary directory otherwise.
func (c Config) Save(src Source) EntriesResult {
	b, err := c.Builder()
	if err != nil {
		return ErroredEntries(err)
	}
	if c.Dir != "" {
		return b.WithDir(src, c.Dir)
	}
	return b.Temp(src)
}
