package relay

import (
	"time"

	"github.com/0xPolygon/xrelay/config/types"
)

const (
	defaultBatchSize         = 25
	defaultMaxBackoffSteps   = 100
	defaultMaxResyncFailures = 10
	defaultPollInterval      = 1500 * time.Millisecond
)

// Config is the configuration of a relay direction
type Config struct {
	// BatchSize is the max number of headers submitted in a single transaction
	BatchSize int `mapstructure:"BatchSize"`
	// MaxBackoffSteps is the number of steps back, after rejections or unknown parents,
	// that triggers a resync from the light client chain endpoint
	MaxBackoffSteps uint64 `mapstructure:"MaxBackoffSteps"`
	// MaxResyncFailures is the number of consecutive failed resyncs that stops the relay
	MaxResyncFailures int `mapstructure:"MaxResyncFailures"`
	// PollInterval is the max time waited for a new source block before checking again
	PollInterval types.Duration `mapstructure:"PollInterval"`
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxBackoffSteps == 0 {
		c.MaxBackoffSteps = defaultMaxBackoffSteps
	}
	if c.MaxResyncFailures <= 0 {
		c.MaxResyncFailures = defaultMaxResyncFailures
	}
	if c.PollInterval.Duration <= 0 {
		c.PollInterval = types.NewDuration(defaultPollInterval)
	}
	return c
}
