package logging

import (
	"fmt"
	"io"
	"os"
)

// Config holds logging configuration.
type Config struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`

	// Writer overrides the output destination. Nil means stderr.
	Writer io.Writer `koanf:"-"`
}

// NewDefaultConfig returns the default logging configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
	}
}

// Validate checks the config for invalid combinations.
func (c Config) Validate() error {
	switch c.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q (want console or json)", c.Format)
	}
	if c.Level != "" {
		if _, err := LevelFromString(c.Level); err != nil {
			return fmt.Errorf("unknown log level %q", c.Level)
		}
	}
	return nil
}

func (c Config) output() io.Writer {
	if c.Writer != nil {
		return c.Writer
	}
	return os.Stderr
}
