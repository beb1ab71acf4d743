package caption

import (
	"context"
	"fmt"
	"sync"
)

// Slot names an engine position in the fallback chain.
type Slot string

const (
	SlotLLM   Slot = "llm"
	SlotLocal Slot = "local"
)

// Factory builds an engine. It runs at most once per Registry slot.
type Factory func(ctx context.Context) (Engine, error)

type handle struct {
	once    sync.Once
	factory Factory
	engine  Engine
	err     error
}

// Registry memoizes engine construction for the lifetime of the process.
// Concurrent first use of a slot runs its factory exactly once; a failed
// construction is remembered and returned to every later caller.
type Registry struct {
	mu      sync.Mutex
	handles map[Slot]*handle
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[Slot]*handle)}
}

// Register installs the factory for slot, replacing any earlier handle
// (and its memoized engine).
func (r *Registry) Register(slot Slot, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[slot] = &handle{factory: factory}
}

// Get returns the engine for slot, initializing it on first use.
func (r *Registry) Get(ctx context.Context, slot Slot) (Engine, error) {
	r.mu.Lock()
	h, ok := r.handles[slot]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no caption engine registered for slot %q", slot)
	}

	h.once.Do(func() {
		// A cancelled first caller must not poison the memoized result.
		h.engine, h.err = h.factory(context.WithoutCancel(ctx))
		if h.err == nil && h.engine == nil {
			h.err = fmt.Errorf("caption engine factory for %q returned nil", slot)
		}
	})
	return h.engine, h.err
}
