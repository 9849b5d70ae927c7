package commands

import (
	"context"
	"fmt"
	"sync"
)

// Registry is the default bus: one handler per command key.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]func(ctx context.Context, cmd Command) (any, error)
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]func(ctx context.Context, cmd Command) (any, error))}
}

// Register binds a typed handler to its command key. Registering the same
// key twice panics: that is a wiring bug, not a runtime condition.
func Register[C Command, R any](reg *Registry, handler Handler[C, R]) {
	var probe C
	key := probe.Key()
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.handlers[key]; exists {
		panic(fmt.Sprintf("commands: duplicate handler for %q", key))
	}
	reg.handlers[key] = func(ctx context.Context, cmd Command) (any, error) {
		typed, ok := cmd.(C)
		if !ok {
			return nil, ErrInvalidCommand
		}
		return handler.Handle(ctx, typed)
	}
}

func (r *Registry) Dispatch(ctx context.Context, cmd Command) (any, error) {
	r.mu.RLock()
	fn, ok := r.handlers[cmd.Key()]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
	}
	return fn(ctx, cmd)
}

var _ Bus = (*Registry)(nil)
