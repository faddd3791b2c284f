package paymentmethod

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/desobsesor/simple-payment-web/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

// Provider surfaces the saved payment methods of a user.
type Provider interface {
	GetUserPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error)
}

// HTTPProvider fetches saved methods from the payment-methods API.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	sfg     singleflight.Group // collapses concurrent fetches for the same user
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type paymentMethodDTO struct {
	PaymentMethodID json.Number `json:"paymentMethodId"`
	IsDefault       bool        `json:"isDefault"`
	Details         struct {
		Type       string `json:"type"`
		CardNumber string `json:"cardNumber"`
		LastFour   string `json:"lastFour"`
		Brand      string `json:"brand"`
		Token      struct {
			CardholderName string `json:"cardholderName"`
			ExpiryMonth    string `json:"expiryMonth"`
			ExpiryYear     string `json:"expiryYear"`
		} `json:"token"`
	} `json:"details"`
}

func (p *HTTPProvider) GetUserPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	v, err, _ := p.sfg.Do(userID, func() (interface{}, error) {
		return p.fetch(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.PaymentMethod), nil
}

func (p *HTTPProvider) fetch(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	url := fmt.Sprintf("%s/v1/payment-methods/user/%s", p.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build payment methods request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch payment methods: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment methods API returned status %d", resp.StatusCode)
	}

	var dtos []paymentMethodDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decode payment methods: %w", err)
	}

	methods := make([]domain.PaymentMethod, len(dtos))
	for i, dto := range dtos {
		methods[i] = domain.PaymentMethod{
			ID:             dto.PaymentMethodID.String(),
			Type:           domain.CardType(dto.Details.Type),
			CardNumber:     dto.Details.CardNumber,
			LastFour:       dto.Details.LastFour,
			CardholderName: dto.Details.Token.CardholderName,
			ExpiryMonth:    dto.Details.Token.ExpiryMonth,
			ExpiryYear:     dto.Details.Token.ExpiryYear,
			Brand:          domain.CardBrand(dto.Details.Brand),
			IsDefault:      dto.IsDefault,
		}
	}
	return methods, nil
}
