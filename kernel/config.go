package kernel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/polyglot-agents/webkernel/session"
)

const defaultMaxIterations = 10

// Config holds initialization parameters for the kernel's subsystems.
// Observer names an entry in the observability registry ("slog"
// default, "noop", or anything registered via RegisterObserver).
type Config struct {
	Session       session.Config `json:"session"`
	MaxIterations int            `json:"max_iterations,omitempty"`
	SystemPrompt  string         `json:"system_prompt,omitempty"`
	Observer      string         `json:"observer,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Session:       session.DefaultConfig(),
		MaxIterations: defaultMaxIterations,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Session.Merge(&source.Session)

	if source.MaxIterations > 0 {
		c.MaxIterations = source.MaxIterations
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and
// returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
