package domain

// PaymentStatus is the lifecycle state of a single payment attempt.
type PaymentStatus string

const (
	PaymentStatusIdle       PaymentStatus = "idle"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusApproved   PaymentStatus = "approved"
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusRejected   PaymentStatus = "rejected"
)

// IsTerminal reports whether no further polling can change the status.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected
}

// String representation (for logging)
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentResult is the outcome of a payment submission or status check.
// Business failures are encoded here as a rejected status, never as a
// Go error.
type PaymentResult struct {
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
}

// PaymentRequest carries everything the gateway needs for one charge.
// Either the raw card fields or PaymentMethodID is populated, never both.
type PaymentRequest struct {
	ProductID       string
	ProductName     string
	Quantity        int
	UserID          string
	Amount          float64
	PaymentMethodID string
	CardNumber      string
	CardholderName  string
	ExpiryMonth     string
	ExpiryYear      string
	CVV             string
}

// CardFormData holds the transient new-card form fields. It is reset
// whenever the checkout surface closes.
type CardFormData struct {
	CardNumber     string `json:"cardNumber"`
	CardholderName string `json:"cardholderName"`
	ExpiryMonth    string `json:"expiryMonth"`
	ExpiryYear     string `json:"expiryYear"`
	CVV            string `json:"cvv"`
}
