package config

// SessionConfig configures the session/analytics store.
type SessionConfig struct {
	// DatabasePath is the SQLite file the store opens (or creates). A
	// relative path is resolved under the data directory.
	DatabasePath string `yaml:"database_path"`

	// UseMemoryStore swaps the SQLite store for an in-memory one, for
	// manual testing and demos where persistence isn't wanted.
	UseMemoryStore bool `yaml:"use_memory_store"`
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "deskaide.db"
	}
}
