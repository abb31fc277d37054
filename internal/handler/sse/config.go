// Package sse writes server-sent event streams.
package sse

import "time"

// Config holds options for SSE connections
type Config struct {
	// KeepAliveInterval is how often a comment line is sent to keep proxies from timing out
	KeepAliveInterval time.Duration
}

// DefaultConfig returns a 15 second keep-alive
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 15 * time.Second,
	}
}
