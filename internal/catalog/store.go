package catalog

import (
	"errors"
	"sync"

	"github.com/desobsesor/simple-payment-web/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Store is the in-memory product catalog. It is seeded from the products
// API on startup and kept current by the stock-update listener.
type Store struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	order    []string // preserves catalog listing order
}

func NewStore() *Store {
	return &Store{products: make(map[string]domain.Product)}
}

// Replace swaps the whole catalog, keeping the given order.
func (s *Store) Replace(products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make(map[string]domain.Product, len(products))
	s.order = make([]string, 0, len(products))
	for _, p := range products {
		if _, seen := s.products[p.ProductID]; !seen {
			s.order = append(s.order, p.ProductID)
		}
		s.products[p.ProductID] = p
	}
}

// List returns the catalog in listing order.
func (s *Store) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	return out
}

// Get returns one product by id.
func (s *Store) Get(productID string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

// SetStock applies a pushed stock update. Updates for unknown products
// are ignored.
func (s *Store) SetStock(productID string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	if stock < 0 {
		stock = 0
	}
	p.Stock = stock
	s.products[productID] = p
	return nil
}
