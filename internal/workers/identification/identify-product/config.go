package identifyproduct

import (
	"fmt"
	"time"

	"price-finder/internal/common/config"
)

type Config struct {
	Enabled         bool
	Timeout         time.Duration
	DefaultStrategy string
	ImageTimeout    time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Timeout:         180 * time.Second,
		DefaultStrategy: "auto",
		ImageTimeout:    15 * time.Second,
	}
}

// LoadConfig reads the worker entry and captioning defaults from cfg.
func LoadConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	c.Enabled = wcfg.Enabled
	if wcfg.Timeout > 0 {
		c.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if cfg.Captioning.DefaultStrategy != "" {
		c.DefaultStrategy = cfg.Captioning.DefaultStrategy
	}
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
