package main

import (
	"context"
	"sync"

	"price-finder/internal/caption"
	"price-finder/internal/caption/chat"
	"price-finder/internal/caption/gemini"
	"price-finder/internal/caption/local"
	"price-finder/internal/common/config"
	"price-finder/internal/common/logger"
)

// newCaptionRegistry registers the hosted and local engine factories. Both
// are built lazily on first use. The returned func releases the gemini
// client if one was created.
func newCaptionRegistry(cfg *config.Config, log logger.Logger) (*caption.Registry, func()) {
	reg := caption.NewRegistry()

	var (
		mu      sync.Mutex
		closers []func() error
	)

	llm := cfg.Captioning.LLM
	switch llm.Provider {
	case "gemini":
		reg.Register(caption.SlotLLM, func(ctx context.Context) (caption.Engine, error) {
			e, err := gemini.New(ctx, &gemini.Config{
				APIKey:    cfg.Captioning.Gemini.APIKey,
				Model:     cfg.Captioning.Gemini.Model,
				MaxTokens: int32(llm.MaxTokens),
			})
			if err != nil {
				return nil, err
			}
			mu.Lock()
			closers = append(closers, e.Close)
			mu.Unlock()
			return e, nil
		})
	default:
		reg.Register(caption.SlotLLM, func(ctx context.Context) (caption.Engine, error) {
			e, err := chat.New(&chat.Config{
				Name:      llm.Provider,
				BaseURL:   llm.BaseURL,
				APIKey:    llm.APIKey,
				Model:     llm.Model,
				MaxTokens: llm.MaxTokens,
				Timeout:   config.GetDuration(llm.Timeout),
			})
			if err != nil {
				return nil, err
			}
			return e, nil
		})
	}

	lc := cfg.Captioning.Local
	reg.Register(caption.SlotLocal, func(ctx context.Context) (caption.Engine, error) {
		e, err := local.New(ctx, &local.Config{
			BaseURL:      lc.BaseURL,
			Model:        lc.Model,
			MaxNewTokens: lc.MaxNewTokens,
			Seed:         lc.Seed,
			PullIfAbsent: lc.PullIfAbsent,
			Timeout:      config.GetDuration(lc.Timeout),
		}, log)
		if err != nil {
			return nil, err
		}
		return e, nil
	})

	return reg, func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("failed to close caption engine", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
