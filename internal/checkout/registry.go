package checkout

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyOpen means the user already has a checkout in progress.
var ErrAlreadyOpen = errors.New("a checkout is already open for this user")

// Factory builds a machine for one purchase intent. Wiring (gateway,
// stores, logger) is closed over by the caller.
type Factory func(intent Intent, userID string) *Machine

// Registry tracks at most one active checkout machine per user.
type Registry struct {
	mu       sync.Mutex
	factory  Factory
	machines map[string]*Machine
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		machines: make(map[string]*Machine),
	}
}

// Open creates and opens a machine for the user. A still-open previous
// checkout blocks the new one.
func (r *Registry) Open(ctx context.Context, userID string, intent Intent) (*Machine, error) {
	r.mu.Lock()
	if existing, ok := r.machines[userID]; ok && existing.View().Open {
		r.mu.Unlock()
		return nil, ErrAlreadyOpen
	}
	machine := r.factory(intent, userID)
	r.machines[userID] = machine
	r.mu.Unlock()

	if err := machine.Open(ctx); err != nil {
		return nil, err
	}
	return machine, nil
}

// Get returns the user's machine, open or not.
func (r *Registry) Get(userID string) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[userID]
	return m, ok
}
