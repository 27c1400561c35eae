// Package notify delivers change-request lifecycle events to reviewers over
// Kafka. Delivery is best-effort: the request service logs and counts
// failures but never rolls a transition back because of one.
package notify

import "sync/atomic"

// Settings controls whether and where lifecycle events are published.
type Settings struct {
	Enabled bool
	Topic   string
}

// Config holds the active notification settings. Reload swaps them atomically
// so in-flight dispatches keep a consistent view.
type Config struct {
	current atomic.Pointer[Settings]
}

// NewConfig constructs a Config with the given initial settings.
func NewConfig(s Settings) *Config {
	c := &Config{}
	c.current.Store(&s)
	return c
}

// Current returns the active settings.
func (c *Config) Current() Settings {
	return *c.current.Load()
}

// Reload replaces the active settings. Dispatches already in flight finish
// under the settings they started with.
func (c *Config) Reload(s Settings) {
	c.current.Store(&s)
}
