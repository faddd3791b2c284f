package checkout

import (
	"strconv"
	"strings"
	"time"

	"github.com/desobsesor/simple-payment-web/internal/domain"
)

// Field keys for validation errors.
const (
	FieldCardNumber     = "cardNumber"
	FieldCardholderName = "cardholderName"
	FieldExpiryMonth    = "expiryMonth"
	FieldExpiryYear     = "expiryYear"
	FieldCVV            = "cvv"
)

// ValidateCard checks the new-card form locally. It returns one message
// per failing field; an empty map means the form can be submitted.
//
// The expiry check compares the two-digit year only. A card expiring
// earlier in the current year still passes; the month is deliberately
// not compared within the matching year.
func ValidateCard(form domain.CardFormData, now time.Time) map[string]string {
	errs := make(map[string]string)

	number := strings.ReplaceAll(form.CardNumber, " ", "")
	if len(number) != 16 || !digitsOnly(number) {
		errs[FieldCardNumber] = "Enter a valid 16-digit card number"
	}

	if strings.TrimSpace(form.CardholderName) == "" {
		errs[FieldCardholderName] = "Enter the cardholder's name"
	}

	month, err := strconv.Atoi(form.ExpiryMonth)
	if err != nil || month < 1 || month > 12 {
		errs[FieldExpiryMonth] = "Invalid month"
	}

	currentYear := now.Year() % 100
	year, err := strconv.Atoi(form.ExpiryYear)
	if err != nil || year < currentYear {
		errs[FieldExpiryYear] = "Invalid year"
	}

	if len(form.CVV) != 3 || !digitsOnly(form.CVV) {
		errs[FieldCVV] = "Invalid CVV"
	}

	return errs
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
