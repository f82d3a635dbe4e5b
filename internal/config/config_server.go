package config

// ServerConfig configures the out-of-scope HTTP/WebSocket surface.
// Nothing in this module binds to it yet; the shape is defined here so
// that surface has something to construct against.
type ServerConfig struct {
	BindAddress string `yaml:"bind_address"`
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.BindAddress == "" {
		cfg.BindAddress = "127.0.0.1:8787"
	}
}
