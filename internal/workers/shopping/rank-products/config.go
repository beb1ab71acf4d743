package rankproducts

import (
	"fmt"
	"time"

	"price-finder/internal/common/config"
	"price-finder/internal/pricing"
)

type Config struct {
	Enabled          bool
	Timeout          time.Duration
	DefaultSortOrder string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		Timeout:          5 * time.Second,
		DefaultSortOrder: "desc",
	}
}

func LoadConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	c.Enabled = wcfg.Enabled
	if wcfg.Timeout > 0 {
		c.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if cfg.Shopping.DefaultSortOrder != "" {
		c.DefaultSortOrder = cfg.Shopping.DefaultSortOrder
	}
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if _, err := pricing.ParseDirection(c.DefaultSortOrder); err != nil {
		return fmt.Errorf("default sort order: %w", err)
	}
	return nil
}
