package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/desobsesor/simple-payment-web/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Transaction is the snapshot sent to the transaction-recording API.
type Transaction struct {
	UserID        string               `json:"userId"`
	PaymentMethod MethodDetail         `json:"paymentMethod"`
	Items         []LineItem           `json:"items"`
	Amount        float64              `json:"amount"`
	Status        domain.PaymentStatus `json:"status"`
}

type MethodDetail struct {
	Type    string      `json:"type"`
	Details CardDetails `json:"details"`
}

type CardDetails struct {
	Type     string    `json:"type"`
	LastFour string    `json:"lastFour"`
	Token    CardToken `json:"token"`
}

type CardToken struct {
	CardholderName string `json:"cardholderName"`
	ExpiryMonth    string `json:"expiryMonth"`
	ExpiryYear     string `json:"expiryYear"`
}

type LineItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// NewTransaction builds the registrar payload from a payment request.
// Newly registered transactions always start out pending.
func NewTransaction(req domain.PaymentRequest) Transaction {
	lastFour := req.CardNumber
	if len(lastFour) > 4 {
		lastFour = lastFour[len(lastFour)-4:]
	}
	return Transaction{
		UserID: req.UserID,
		PaymentMethod: MethodDetail{
			Type: "card",
			Details: CardDetails{
				Type:     "Visa",
				LastFour: lastFour,
				Token: CardToken{
					CardholderName: req.CardholderName,
					ExpiryMonth:    req.ExpiryMonth,
					ExpiryYear:     req.ExpiryYear,
				},
			},
		},
		Items: []LineItem{
			{
				ProductID: req.ProductID,
				Quantity:  req.Quantity,
				UnitPrice: req.Amount,
			},
		},
		Amount: req.Amount,
		Status: domain.PaymentStatusPending,
	}
}

// Registrar records transactions with an external collaborator.
type Registrar interface {
	RegisterTransaction(ctx context.Context, txn Transaction) error
}

// HTTPRegistrar posts transactions to the transactions API behind a
// circuit breaker, so a dead registrar fails fast instead of holding up
// every checkout.
type HTTPRegistrar struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewHTTPRegistrar(baseURL string, timeout time.Duration) *HTTPRegistrar {
	return &HTTPRegistrar{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name: "transaction-registrar",
		}),
	}
}

func (r *HTTPRegistrar) RegisterTransaction(ctx context.Context, txn Transaction) error {
	_, err := r.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, r.post(ctx, txn)
	})
	return err
}

func (r *HTTPRegistrar) post(ctx context.Context, txn Transaction) error {
	body, err := json.Marshal(txn)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build transaction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("register transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("transactions API returned status %d", resp.StatusCode)
	}
	return nil
}
