package source

import "time"

const (
	defaultPollingInterval = 1000 * time.Millisecond
	defaultRetryAttempts   = 5
	defaultRetryDelay      = 2000 * time.Millisecond
)

// Config describes the upstream wearable endpoint and the polling policy.
// Zero fields keep their defaults when passed to Configure.
type Config struct {
	Endpoint        string
	APIKey          string
	Headers         map[string]string
	PollingInterval time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
}

func (c *Config) applyDefaults() {
	if c.PollingInterval <= 0 {
		c.PollingInterval = defaultPollingInterval
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = defaultRetryAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}
