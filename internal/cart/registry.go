package cart

import "sync"

// Registry hands out one cart per user. Carts live for the lifetime of
// the process; there is no persistence behind them.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Store
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Store)}
}

// For returns the user's cart, creating it on first use.
func (r *Registry) For(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.carts[userID]
	if !ok {
		store = NewStore()
		r.carts[userID] = store
	}
	return store
}
