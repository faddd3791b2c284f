package paymentmethod

import (
	"sync"

	"github.com/desobsesor/simple-payment-web/internal/domain"
)

// SelectionStore tracks the saved payment method currently chosen for
// checkout. It is shared between the catalog and checkout surfaces; only
// the open checkout flow mutates it. The store does not validate expiry
// or ownership, that is the caller's job.
type SelectionStore struct {
	mu       sync.RWMutex
	selected *domain.PaymentMethod
}

func NewSelectionStore() *SelectionStore {
	return &SelectionStore{}
}

// SetSelected replaces the current selection. Pass nil to clear it.
func (s *SelectionStore) SetSelected(method *domain.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = method
}

// Selected returns the current selection, or nil when none is chosen.
func (s *SelectionStore) Selected() *domain.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}
