package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/desobsesor/simple-payment-web/internal/domain"
)

func TestRegistry_For(t *testing.T) {
	registry := NewRegistry()

	first := registry.For("user-1")
	assert.Same(t, first, registry.For("user-1"), "repeat lookups return the same cart")
	assert.NotSame(t, first, registry.For("user-2"))

	first.AddToCart(domain.Product{ProductID: "p1", Price: 5, Stock: 10}, 2)
	assert.Equal(t, 2, registry.For("user-1").TotalItems())
	assert.Equal(t, 0, registry.For("user-2").TotalItems())
}
