package domain

type CardType string

const (
	CardTypeCredit CardType = "credit"
	CardTypeDebit  CardType = "debit"
)

type CardBrand string

const (
	CardBrandVisa       CardBrand = "visa"
	CardBrandMastercard CardBrand = "mastercard"
	CardBrandAmex       CardBrand = "amex"
	CardBrandOther      CardBrand = "other"
)

// PaymentMethod is a card previously registered by the user and surfaced
// by the payment-method provider. Immutable once fetched.
type PaymentMethod struct {
	ID             string    `json:"id"`
	Type           CardType  `json:"type"`
	CardNumber     string    `json:"cardNumber"`
	LastFour       string    `json:"lastFour"`
	CardholderName string    `json:"cardholderName"`
	ExpiryMonth    string    `json:"expiryMonth"`
	ExpiryYear     string    `json:"expiryYear"`
	Brand          CardBrand `json:"brand"`
	IsDefault      bool      `json:"isDefault"`
	IsExpired      bool      `json:"isExpired"`
}
