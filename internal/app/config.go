package app

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultDebounce is how long watch mode waits for build file changes to
// settle before it regenerates the graph.
const DefaultDebounce = 200 * time.Millisecond

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	BuildPaths []string `validate:"min=1,dive,required"` // hcl files or directories
	OutputPath string   // empty writes the graph to the command output
	Format     string   `validate:"oneof=json yaml yml"`

	LogFormat string `validate:"oneof=text json auto"`
	LogLevel  string `validate:"oneof=debug info warn error"`

	Watch    bool
	Debounce time.Duration `validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
