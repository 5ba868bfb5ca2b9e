package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot guard knobs; zero means the defaults below
	ConnectRetries int
	PingTimeout    time.Duration
}

const (
	defaultConnectRetries = 20
	defaultPingTimeout    = 3 * time.Second
)

func (c PGConfig) retries() int {
	if c.ConnectRetries > 0 {
		return c.ConnectRetries
	}
	return defaultConnectRetries
}

func (c PGConfig) pingTimeout() time.Duration {
	if c.PingTimeout > 0 {
		return c.PingTimeout
	}
	return defaultPingTimeout
}
