package paymentmethod

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desobsesor/simple-payment-web/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserPaymentMethods_MapsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment-methods/user/user-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"paymentMethodId": 42,
				"isDefault": true,
				"details": {
					"type": "credit",
					"cardNumber": "4111111111111111",
					"lastFour": "1111",
					"brand": "visa",
					"token": {
						"cardholderName": "Jane Roe",
						"expiryMonth": "12",
						"expiryYear": "27"
					}
				}
			}
		]`))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL, 5*time.Second)
	methods, err := provider.GetUserPaymentMethods(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "42", methods[0].ID)
	assert.Equal(t, domain.CardTypeCredit, methods[0].Type)
	assert.Equal(t, "1111", methods[0].LastFour)
	assert.Equal(t, "Jane Roe", methods[0].CardholderName)
	assert.Equal(t, domain.CardBrandVisa, methods[0].Brand)
	assert.True(t, methods[0].IsDefault)
	assert.False(t, methods[0].IsExpired)
}

func TestGetUserPaymentMethods_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL, 5*time.Second)
	_, err := provider.GetUserPaymentMethods(context.Background(), "user-1")

	assert.Error(t, err)
}

func TestSelectionStore(t *testing.T) {
	store := NewSelectionStore()
	assert.Nil(t, store.Selected())

	method := &domain.PaymentMethod{ID: "pm_1"}
	store.SetSelected(method)
	require.NotNil(t, store.Selected())
	assert.Equal(t, "pm_1", store.Selected().ID)

	store.SetSelected(nil)
	assert.Nil(t, store.Selected())
}

func TestMockMethods(t *testing.T) {
	defaults := DefaultMockMethods()
	require.Len(t, defaults, 3)
	assert.True(t, defaults[0].IsDefault)
	assert.True(t, defaults[2].IsExpired)

	fallback := FallbackMockMethods()
	require.Len(t, fallback, 2)
	for _, m := range fallback {
		assert.False(t, m.IsExpired)
	}
}
