package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem(t *testing.T) {
	f := newFixture()
	token := f.token(t, "user-1")

	recorder := f.do(t, "POST", "/api/v1/cart/items", token,
		AddItemRequestDTO{ProductID: "prod_1", Quantity: 2})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var response CartResponse
	decode(t, recorder, &response)
	require.Len(t, response.Items, 1)
	assert.Equal(t, 2, response.Items[0].Quantity)
	assert.InDelta(t, 2599.98, response.Items[0].LineTotal, 1e-9)
	assert.Equal(t, 2, response.TotalItems)
	assert.Equal(t, "$2599.98", response.FormattedTotal)
}

func TestAddItem_ClampsToStock(t *testing.T) {
	f := newFixture()
	token := f.token(t, "user-1")

	recorder := f.do(t, "POST", "/api/v1/cart/items", token,
		AddItemRequestDTO{ProductID: "prod_1", Quantity: 99})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var response CartResponse
	decode(t, recorder, &response)
	require.Len(t, response.Items, 1)
	assert.Equal(t, 5, response.Items[0].Quantity, "quantity clamps to the product's stock")
}

func TestAddItem_Validation(t *testing.T) {
	f := newFixture()
	token := f.token(t, "user-1")

	tests := []struct {
		name         string
		body         AddItemRequestDTO
		expectedHTTP int
		expectedCode string
	}{
		{"missing product", AddItemRequestDTO{Quantity: 1}, http.StatusBadRequest, "invalid_product_id"},
		{"zero quantity", AddItemRequestDTO{ProductID: "prod_1"}, http.StatusBadRequest, "invalid_quantity"},
		{"quantity too large", AddItemRequestDTO{ProductID: "prod_1", Quantity: 100}, http.StatusBadRequest, "invalid_quantity"},
		{"unknown product", AddItemRequestDTO{ProductID: "prod_999", Quantity: 1}, http.StatusNotFound, "not_found"},
		{"out of stock", AddItemRequestDTO{ProductID: "prod_2", Quantity: 1}, http.StatusConflict, "out_of_stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := f.do(t, "POST", "/api/v1/cart/items", token, tt.body)
			assert.Equal(t, tt.expectedHTTP, recorder.Code)

			var response ErrorResponse
			decode(t, recorder, &response)
			assert.Equal(t, tt.expectedCode, response.Code)
		})
	}
}

func TestCart_PerUserIsolation(t *testing.T) {
	f := newFixture()

	recorder := f.do(t, "POST", "/api/v1/cart/items", f.token(t, "user-1"),
		AddItemRequestDTO{ProductID: "prod_1", Quantity: 1})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = f.do(t, "GET", "/api/v1/cart/", f.token(t, "user-2"), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response CartResponse
	decode(t, recorder, &response)
	assert.Empty(t, response.Items)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	f := newFixture()
	token := f.token(t, "user-1")

	f.do(t, "POST", "/api/v1/cart/items", token, AddItemRequestDTO{ProductID: "prod_1", Quantity: 1})

	recorder := f.do(t, "PUT", "/api/v1/cart/items/prod_1", token, UpdateQuantityRequestDTO{Quantity: 3})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response CartResponse
	decode(t, recorder, &response)
	require.Len(t, response.Items, 1)
	assert.Equal(t, 3, response.Items[0].Quantity)

	recorder = f.do(t, "DELETE", "/api/v1/cart/items/prod_1", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	decode(t, recorder, &response)
	assert.Empty(t, response.Items)
}

func TestClearCart(t *testing.T) {
	f := newFixture()
	token := f.token(t, "user-1")

	f.do(t, "POST", "/api/v1/cart/items", token, AddItemRequestDTO{ProductID: "prod_1", Quantity: 2})

	recorder := f.do(t, "DELETE", "/api/v1/cart/", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response CartResponse
	decode(t, recorder, &response)
	assert.Empty(t, response.Items)
	assert.Equal(t, 0, response.TotalItems)
	assert.Equal(t, "$0.00", response.FormattedTotal)
}

func TestCart_RequiresAuth(t *testing.T) {
	f := newFixture()

	recorder := f.do(t, "GET", "/api/v1/cart/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
