package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/desobsesor/simple-payment-web/internal/cart"
	"github.com/desobsesor/simple-payment-web/internal/catalog"
	"github.com/desobsesor/simple-payment-web/internal/checkout"
	"github.com/desobsesor/simple-payment-web/internal/domain"
	"github.com/desobsesor/simple-payment-web/internal/identity"
	"github.com/desobsesor/simple-payment-web/internal/payment"
	"github.com/desobsesor/simple-payment-web/internal/paymentmethod"
)

// stubGateway implements payment.Gateway with fixed responses and no
// simulated delays.
type stubGateway struct {
	mu sync.Mutex

	processResult domain.PaymentResult
	processErr    error

	savedResult domain.PaymentResult
	savedErr    error

	checkResult domain.PaymentResult

	processCalls int
	savedCalls   int
}

func (g *stubGateway) ProcessPayment(context.Context, domain.PaymentRequest) (domain.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.processCalls++
	return g.processResult, g.processErr
}

func (g *stubGateway) CheckPaymentStatus(_ context.Context, transactionID string) (domain.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := g.checkResult
	result.TransactionID = transactionID
	return result, nil
}

func (g *stubGateway) ProcessPaymentWithSavedMethod(context.Context, string, float64, string, int, string) (domain.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.savedCalls++
	return g.savedResult, g.savedErr
}

type stubProvider struct {
	methods []domain.PaymentMethod
	err     error
}

func (p *stubProvider) GetUserPaymentMethods(context.Context, string) ([]domain.PaymentMethod, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.methods, nil
}

type stubRegistrar struct{}

func (stubRegistrar) RegisterTransaction(context.Context, payment.Transaction) error {
	return nil
}

type fixture struct {
	router   http.Handler
	verifier *identity.Verifier

	gateway  *stubGateway
	provider *stubProvider
	catalog  *catalog.Store
	carts    *cart.Registry
}

func savedTestMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{ID: "pm_1", CardNumber: "4111111111111111", CardholderName: "Jane Roe",
			ExpiryMonth: "12", ExpiryYear: "99", LastFour: "1111", Brand: domain.CardBrandVisa,
			IsDefault: true},
		{ID: "pm_2", CardNumber: "5555555555554444", CardholderName: "Jane Roe",
			ExpiryMonth: "10", ExpiryYear: "99", LastFour: "4444", Brand: domain.CardBrandMastercard},
	}
}

func newFixture() *fixture {
	logger := zap.NewNop()

	store := catalog.NewStore()
	store.Replace([]domain.Product{
		{ProductID: "prod_1", Name: "Laptop", Description: "A powerful laptop",
			Price: 1299.99, ImageURL: "https://example.com/laptop.jpg",
			SKU: "SKU-1", Category: "electronics", Stock: 5},
		{ProductID: "prod_2", Name: "Mouse", Description: "Wireless mouse",
			Price: 29.99, SKU: "SKU-2", Category: "electronics", Stock: 0},
	})

	gateway := &stubGateway{
		processResult: domain.PaymentResult{Status: domain.PaymentStatusApproved, TransactionID: "TX-AAAA1111"},
		savedResult:   domain.PaymentResult{Status: domain.PaymentStatusApproved, TransactionID: "txn_abc123"},
		checkResult:   domain.PaymentResult{Status: domain.PaymentStatusApproved},
	}
	provider := &stubProvider{methods: savedTestMethods()}

	carts := cart.NewRegistry()
	selection := paymentmethod.NewSelectionStore()

	// auto-close delays are far beyond test duration so views stay put
	cfg := checkout.Config{
		PollWait:             time.Millisecond,
		AutoCloseNewCard:     time.Hour,
		AutoCloseSavedMethod: time.Hour,
		AutoClosePoll:        time.Hour,
	}

	checkouts := checkout.NewRegistry(func(intent checkout.Intent, userID string) *checkout.Machine {
		return checkout.NewMachine(checkout.Deps{
			Gateway:   gateway,
			Registrar: stubRegistrar{},
			Methods:   provider,
			Selection: selection,
			Cart:      carts.For(userID),
			Logger:    logger,
		}, intent, userID, cfg, nil)
	})

	verifier := identity.NewVerifier("test-secret")
	router := NewRouter(
		NewProductHandler(store),
		NewCartHandler(carts, store, logger),
		NewCheckoutHandler(checkouts, store, logger),
		verifier, logger,
		RouterConfig{RequestTimeout: 5 * time.Second},
	)

	return &fixture{
		router:   router,
		verifier: verifier,
		gateway:  gateway,
		provider: provider,
		catalog:  store,
		carts:    carts,
	}
}

func (f *fixture) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := f.verifier.Sign(userID, time.Hour)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

// do runs a request through the full router. An empty token leaves the
// Authorization header off.
func (f *fixture) do(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(into); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}
