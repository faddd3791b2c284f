package cart

import (
	"sync"

	"github.com/desobsesor/simple-payment-web/internal/domain"
)

// Store is the in-memory shopping cart shared by the catalog and checkout
// surfaces. Lifetime is the session, there is no persistence behind it.
// At most one entry exists per product.
type Store struct {
	mu    sync.RWMutex
	items []domain.CartItem
}

func NewStore() *Store {
	return &Store{}
}

// AddToCart inserts the product or increments its quantity when already
// present. The resulting quantity never exceeds the product's stock and
// never drops below 1; overflow clamps silently instead of erroring.
func (s *Store) AddToCart(product domain.Product, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ProductID == product.ProductID {
			s.items[i].Quantity = clamp(s.items[i].Quantity+quantity, 1, product.Stock)
			return
		}
	}

	s.items = append(s.items, domain.CartItem{
		Product:  product,
		Quantity: clamp(quantity, 1, product.Stock),
	})
}

// RemoveFromCart drops the entry for productID. No-op if absent.
func (s *Store) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.Product.ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity for productID, clamped to
// [1, product stock]. No-op if the product is not in the cart.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ProductID == productID {
			s.items[i].Quantity = clamp(quantity, 1, s.items[i].Product.Stock)
			return
		}
	}
}

// ClearCart empties all entries.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Items returns a snapshot of the cart contents.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems is the sum of quantities across entries.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of price*quantity across entries.
func (s *Store) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0.0
	for _, item := range s.items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
