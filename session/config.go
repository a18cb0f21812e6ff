package session

import "fmt"

// Backend names for Config.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config selects and parameterizes the session backend.
type Config struct {
	// Backend is "memory" (default) or "sqlite".
	Backend string `json:"backend,omitempty"`
	// Path is the SQLite database file; required for the sqlite backend.
	Path string `json:"path,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{Backend: BackendMemory}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
}

// New creates a Session from configuration.
func New(cfg *Config) (Session, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemorySession(), nil
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("session backend %q requires a path", cfg.Backend)
		}
		return NewSQLiteSession(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.Backend)
	}
}
