package queries

import (
	"context"
	"fmt"
	"sync"
)

// Registry is the default bus: one handler per query key.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]func(ctx context.Context, query Query) (any, error)
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]func(ctx context.Context, query Query) (any, error))}
}

// Register binds a typed handler to its query key.
func Register[Q Query, R any](reg *Registry, handler Handler[Q, R]) {
	var probe Q
	key := probe.Key()
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.handlers[key]; exists {
		panic(fmt.Sprintf("queries: duplicate handler for %q", key))
	}
	reg.handlers[key] = func(ctx context.Context, query Query) (any, error) {
		typed, ok := query.(Q)
		if !ok {
			return nil, ErrInvalidQuery
		}
		return handler.Handle(ctx, typed)
	}
}

func (r *Registry) Ask(ctx context.Context, query Query) (any, error) {
	r.mu.RLock()
	fn, ok := r.handlers[query.Key()]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, query.Key())
	}
	return fn(ctx, query)
}

var _ Bus = (*Registry)(nil)
