package payment

import (
	"context"

	"github.com/desobsesor/simple-payment-web/internal/domain"
)

// Messages carried on rejected results.
const (
	MsgIssuerRejected     = "Transaction rejected by the issuing bank"
	MsgRegistrationFailed = "Failed to register transaction"
)

// Gateway is the payment processor behind checkout. Business failures come
// back as a rejected PaymentResult, never as an error; the only error a
// method returns is context cancellation.
type Gateway interface {
	// ProcessPayment charges a freshly entered card.
	ProcessPayment(ctx context.Context, req domain.PaymentRequest) (domain.PaymentResult, error)

	// CheckPaymentStatus rechecks a pending transaction. The returned
	// result always echoes transactionID.
	CheckPaymentStatus(ctx context.Context, transactionID string) (domain.PaymentResult, error)

	// ProcessPaymentWithSavedMethod charges a previously saved method.
	ProcessPaymentWithSavedMethod(ctx context.Context, methodID string, amount float64, productID string, quantity int, userID string) (domain.PaymentResult, error)
}
