package paymentmethod

import "github.com/desobsesor/simple-payment-web/internal/domain"

// DefaultMockMethods returns the stand-in card list used when the provider
// comes back empty: two valid cards plus one expired one.
func DefaultMockMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{
			ID:             "pm_mock1",
			Type:           domain.CardTypeCredit,
			CardNumber:     "4111111111111111",
			LastFour:       "1111",
			CardholderName: "Yovany Suárez Silva",
			ExpiryMonth:    "12",
			ExpiryYear:     "25",
			Brand:          domain.CardBrandVisa,
			IsDefault:      true,
		},
		{
			ID:             "pm_mock2",
			Type:           domain.CardTypeCredit,
			CardNumber:     "5555555555554444",
			LastFour:       "4444",
			CardholderName: "Yovany Suárez Silva",
			ExpiryMonth:    "10",
			ExpiryYear:     "24",
			Brand:          domain.CardBrandMastercard,
		},
		{
			ID:             "pm_mock3",
			Type:           domain.CardTypeDebit,
			CardNumber:     "4111111111112222",
			LastFour:       "2222",
			CardholderName: "Yovany Suárez Silva",
			ExpiryMonth:    "03",
			ExpiryYear:     "23",
			Brand:          domain.CardBrandVisa,
			IsExpired:      true,
		},
	}
}

// FallbackMockMethods returns the card list used when the provider errors:
// two valid cards only.
func FallbackMockMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{
			ID:             "pm_mock1",
			Type:           domain.CardTypeCredit,
			CardNumber:     "4111111111111111",
			LastFour:       "1111",
			CardholderName: "Yovany Suárez Silva",
			ExpiryMonth:    "12",
			ExpiryYear:     "25",
			Brand:          domain.CardBrandVisa,
			IsDefault:      true,
		},
		{
			ID:             "pm_mock2",
			Type:           domain.CardTypeCredit,
			CardNumber:     "5555555555554444",
			LastFour:       "4444",
			CardholderName: "Yovany Suárez Silva",
			ExpiryMonth:    "10",
			ExpiryYear:     "24",
			Brand:          domain.CardBrandMastercard,
		},
	}
}
