package fetchreviews

import (
	"fmt"
	"time"

	"price-finder/internal/common/config"
	"price-finder/internal/enrichment"
)

type Config struct {
	Enabled    bool
	Timeout    time.Duration
	MaxReviews int
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		Timeout:    30 * time.Second,
		MaxReviews: enrichment.DefaultMaxReviews,
	}
}

func LoadConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	c.Enabled = wcfg.Enabled
	if wcfg.Timeout > 0 {
		c.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if cfg.Enrichment.MaxReviews > 0 {
		c.MaxReviews = cfg.Enrichment.MaxReviews
	}
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxReviews <= 0 {
		return fmt.Errorf("max reviews must be positive")
	}
	return nil
}
