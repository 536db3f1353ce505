package confirmation

import (
	"time"

	"github.com/0xPolygon/xrelay/config/types"
)

const (
	defaultPollInterval      = 1500 * time.Millisecond
	defaultMaxOrphanRestarts = 5
	defaultCacheSize         = 4096
	defaultCacheWindow       = 1024
)

// Config is the configuration of the confirmation tracker
type Config struct {
	// Confirmations is the number of blocks that must be built on top of the block of a
	// transaction, both on its own chain and in the light client, before it's confirmed
	Confirmations uint64 `mapstructure:"Confirmations"`
	// PollInterval is the max time between checks while waiting
	PollInterval types.Duration `mapstructure:"PollInterval"`
	// MaxOrphanRestarts is the number of consecutive orphaned results tolerated by WaitLightClient
	MaxOrphanRestarts int `mapstructure:"MaxOrphanRestarts"`
	// CacheSize is the number of header links kept in memory for the ancestor walk
	CacheSize int `mapstructure:"CacheSize"`
	// CacheWindow is how many blocks below the light client endpoint the cached links are kept
	CacheWindow uint64 `mapstructure:"CacheWindow"`
}

func (c Config) withDefaults() Config {
	if c.PollInterval.Duration <= 0 {
		c.PollInterval = types.NewDuration(defaultPollInterval)
	}
	if c.MaxOrphanRestarts <= 0 {
		c.MaxOrphanRestarts = defaultMaxOrphanRestarts
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}
	if c.CacheWindow == 0 {
		c.CacheWindow = defaultCacheWindow
	}
	return c
}
