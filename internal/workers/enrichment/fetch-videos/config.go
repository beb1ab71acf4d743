package fetchvideos

import (
	"fmt"
	"time"

	"price-finder/internal/common/config"
	"price-finder/internal/enrichment"
)

type Config struct {
	Enabled   bool
	Timeout   time.Duration
	MaxVideos int
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Timeout:   30 * time.Second,
		MaxVideos: enrichment.DefaultMaxVideos,
	}
}

func LoadConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	c.Enabled = wcfg.Enabled
	if wcfg.Timeout > 0 {
		c.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if cfg.Enrichment.MaxVideos > 0 {
		c.MaxVideos = cfg.Enrichment.MaxVideos
	}
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxVideos <= 0 {
		return fmt.Errorf("max videos must be positive")
	}
	return nil
}
