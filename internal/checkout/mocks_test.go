package checkout

import (
	"context"
	"sync"

	"github.com/desobsesor/simple-payment-web/internal/cart"
	"github.com/desobsesor/simple-payment-web/internal/domain"
	"github.com/desobsesor/simple-payment-web/internal/payment"
	"github.com/desobsesor/simple-payment-web/internal/paymentmethod"
)

// mockGateway implements payment.Gateway with scripted responses.
type mockGateway struct {
	mu sync.Mutex

	processResult domain.PaymentResult
	processErr    error
	processCalls  int
	// when set, ProcessPayment signals processStarted and blocks until
	// release is closed
	processStarted chan struct{}
	release        chan struct{}

	savedResult domain.PaymentResult
	savedErr    error
	savedCalls  int

	checkResults []domain.PaymentResult // sticky on the last entry
	checkErr     error
	checkCalls   int
}

func (g *mockGateway) ProcessPayment(ctx context.Context, _ domain.PaymentRequest) (domain.PaymentResult, error) {
	g.mu.Lock()
	g.processCalls++
	started, release := g.processStarted, g.release
	g.mu.Unlock()

	if started != nil {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return domain.PaymentResult{}, ctx.Err()
		}
	}
	return g.processResult, g.processErr
}

func (g *mockGateway) CheckPaymentStatus(_ context.Context, transactionID string) (domain.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.checkCalls
	g.checkCalls++
	if g.checkErr != nil {
		return domain.PaymentResult{}, g.checkErr
	}
	if idx >= len(g.checkResults) {
		idx = len(g.checkResults) - 1
	}
	result := g.checkResults[idx]
	result.TransactionID = transactionID
	return result, nil
}

func (g *mockGateway) ProcessPaymentWithSavedMethod(_ context.Context, _ string, _ float64, _ string, _ int, _ string) (domain.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.savedCalls++
	return g.savedResult, g.savedErr
}

func (g *mockGateway) checkCallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkCalls
}

// mockProvider implements paymentmethod.Provider.
type mockProvider struct {
	methods []domain.PaymentMethod
	err     error
	calls   int
}

func (p *mockProvider) GetUserPaymentMethods(context.Context, string) ([]domain.PaymentMethod, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.methods, nil
}

// mockRegistrar implements payment.Registrar.
type mockRegistrar struct {
	mu   sync.Mutex
	err  error
	txns []payment.Transaction
}

func (r *mockRegistrar) RegisterTransaction(_ context.Context, txn payment.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns = append(r.txns, txn)
	return r.err
}

func (r *mockRegistrar) registered() []payment.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]payment.Transaction, len(r.txns))
	copy(out, r.txns)
	return out
}

type testFixture struct {
	machine   *Machine
	gateway   *mockGateway
	provider  *mockProvider
	registrar *mockRegistrar
	selection *paymentmethod.SelectionStore
	cart      *cart.Store

	mu       sync.Mutex
	closedCt int
}

func (f *testFixture) closedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closedCt
}

func newFixture(gateway *mockGateway, provider *mockProvider, userID string, cfg Config) *testFixture {
	f := &testFixture{
		gateway:   gateway,
		provider:  provider,
		registrar: &mockRegistrar{},
		selection: paymentmethod.NewSelectionStore(),
		cart:      cart.NewStore(),
	}
	f.machine = NewMachine(Deps{
		Gateway:   gateway,
		Registrar: f.registrar,
		Methods:   provider,
		Selection: f.selection,
		Cart:      f.cart,
	}, Intent{ProductID: "p1", ProductName: "Widget", Quantity: 2, Amount: 49.90}, userID, cfg,
		func() {
			f.mu.Lock()
			f.closedCt++
			f.mu.Unlock()
		})
	return f
}

func validMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{ID: "pm_1", CardNumber: "4111111111111111", CardholderName: "Jane Roe",
			ExpiryMonth: "12", ExpiryYear: "29", LastFour: "1111", Brand: domain.CardBrandVisa},
		{ID: "pm_2", CardNumber: "5555555555554444", CardholderName: "Jane Roe",
			ExpiryMonth: "10", ExpiryYear: "28", LastFour: "4444", Brand: domain.CardBrandMastercard,
			IsDefault: true},
	}
}

func validForm() domain.CardFormData {
	return domain.CardFormData{
		CardNumber:     "4111 1111 1111 1111",
		CardholderName: "Jane Roe",
		ExpiryMonth:    "11",
		ExpiryYear:     "99",
		CVV:            "987",
	}
}
