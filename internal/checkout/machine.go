package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/desobsesor/simple-payment-web/internal/cart"
	"github.com/desobsesor/simple-payment-web/internal/domain"
	"github.com/desobsesor/simple-payment-web/internal/payment"
	"github.com/desobsesor/simple-payment-web/internal/paymentmethod"
	"go.uber.org/zap"
)

// EntryMode is how the user is paying: picking a saved card or typing a
// new one.
type EntryMode string

const (
	EntryModeSavedMethods EntryMode = "saved_methods"
	EntryModeNewCard      EntryMode = "new_card"
)

const genericPaymentError = "Error processing payment. Please try again."

// Intent is the purchase the checkout was opened for.
type Intent struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Amount      float64 `json:"amount"`
}

// Config holds the machine's timing knobs.
type Config struct {
	// PollWait is the delay before each pending-transaction recheck.
	PollWait time.Duration

	// Auto-close delays after an approved outcome, per path.
	AutoCloseNewCard     time.Duration
	AutoCloseSavedMethod time.Duration
	AutoClosePoll        time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollWait:             3 * time.Second,
		AutoCloseNewCard:     4 * time.Second,
		AutoCloseSavedMethod: 2 * time.Second,
		AutoClosePoll:        3 * time.Second,
	}
}

// Deps are the collaborators one checkout attempt works against.
type Deps struct {
	Gateway   payment.Gateway
	Registrar payment.Registrar
	Methods   paymentmethod.Provider
	Selection *paymentmethod.SelectionStore
	Cart      *cart.Store
	Logger    *zap.Logger
}

// View is the snapshot the presentation layer renders from.
type View struct {
	Open             bool                   `json:"open"`
	Intent           Intent                 `json:"intent"`
	EntryMode        EntryMode              `json:"entryMode"`
	Result           domain.PaymentResult   `json:"result"`
	SavedMethods     []domain.PaymentMethod `json:"savedPaymentMethods"`
	SelectedMethodID string                 `json:"selectedPaymentMethodId,omitempty"`
	FieldErrors      map[string]string      `json:"fieldErrors,omitempty"`
	Submitting       bool                   `json:"submitting"`
}

// Machine drives a single checkout attempt: entry-method choice,
// submission, outcome display and the pending-poll retry loop. All
// mutation is serialized behind its mutex; the poll loop and auto-close
// timer are cancelled by Close, never left dangling.
type Machine struct {
	deps   Deps
	intent Intent
	userID string
	cfg    Config

	onClose func()

	mu           sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	open         bool
	entryMode    EntryMode
	result       domain.PaymentResult
	savedMethods []domain.PaymentMethod
	selectedID   string
	form         domain.CardFormData
	fieldErrors  map[string]string
	submitting   bool
	polling      bool
	closeTimer   *time.Timer
}

// NewMachine builds a machine for one purchase intent. onClose fires once
// per close, after state has been reset; pass nil when not needed.
func NewMachine(deps Deps, intent Intent, userID string, cfg Config, onClose func()) *Machine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Machine{
		deps:      deps,
		intent:    intent,
		userID:    userID,
		cfg:       cfg,
		onClose:   onClose,
		entryMode: EntryModeSavedMethods,
		result:    domain.PaymentResult{Status: domain.PaymentStatusIdle},
	}
}

// Open loads the user's saved payment methods and picks the initial entry
// mode. Provider errors fall back to mock cards rather than failing the
// open; a user without any valid card lands on the new-card form.
func (m *Machine) Open(ctx context.Context) error {
	m.mu.Lock()
	if m.open {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	var (
		methods []domain.PaymentMethod
		err     error
	)
	if m.userID != "" {
		methods, err = m.deps.Methods.GetUserPaymentMethods(ctx, m.userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.open = true
	m.result = domain.PaymentResult{Status: domain.PaymentStatusIdle}

	switch {
	case m.userID == "":
		m.savedMethods = nil
		m.selectedID = ""
		m.entryMode = EntryModeNewCard
	case err != nil:
		m.deps.Logger.Warn("loading payment methods failed, using fallback cards",
			zap.String("user_id", m.userID), zap.Error(err))
		m.savedMethods = paymentmethod.FallbackMockMethods()
		m.selectedID = "pm_mock1"
		m.entryMode = EntryModeSavedMethods
	case len(methods) == 0:
		m.savedMethods = paymentmethod.DefaultMockMethods()
		m.selectedID = "pm_mock1"
		m.entryMode = EntryModeSavedMethods
	default:
		m.savedMethods = methods
		if preferred := pickMethod(methods); preferred != nil {
			m.selectedID = preferred.ID
			m.entryMode = EntryModeSavedMethods
		} else {
			// every saved card is expired, nothing to offer
			m.selectedID = ""
			m.entryMode = EntryModeNewCard
		}
	}
	return nil
}

// pickMethod returns the default non-expired method, or the first
// non-expired one, or nil.
func pickMethod(methods []domain.PaymentMethod) *domain.PaymentMethod {
	var first *domain.PaymentMethod
	for i := range methods {
		if methods[i].IsExpired {
			continue
		}
		if methods[i].IsDefault {
			return &methods[i]
		}
		if first == nil {
			first = &methods[i]
		}
	}
	return first
}

// SelectMethod records the chosen saved method locally and in the shared
// selection store.
func (m *Machine) SelectMethod(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return ErrNotOpen
	}
	if m.submitting {
		return ErrSubmissionInFlight
	}

	m.selectedID = id
	m.entryMode = EntryModeSavedMethods
	m.deps.Selection.SetSelected(m.findMethodLocked(id))
	return nil
}

// AddNewCard switches to the new-card form and clears the selection.
func (m *Machine) AddNewCard() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return ErrNotOpen
	}
	if m.submitting {
		return ErrSubmissionInFlight
	}

	m.selectedID = ""
	m.entryMode = EntryModeNewCard
	m.deps.Selection.SetSelected(nil)
	return nil
}

// SubmitCard validates the form and, if it passes, runs the payment.
// Validation failures are field-level and leave the result untouched.
func (m *Machine) SubmitCard(ctx context.Context, form domain.CardFormData) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return ErrNotOpen
	}
	if m.submitting {
		m.mu.Unlock()
		return ErrSubmissionInFlight
	}

	m.form = form
	if errs := ValidateCard(form, time.Now()); len(errs) > 0 {
		m.fieldErrors = errs
		m.mu.Unlock()
		return ErrInvalidCard
	}
	m.fieldErrors = nil
	m.submitting = true
	m.result = domain.PaymentResult{Status: domain.PaymentStatusProcessing}

	req := domain.PaymentRequest{
		ProductID:      m.intent.ProductID,
		ProductName:    m.intent.ProductName,
		Quantity:       m.intent.Quantity,
		UserID:         m.userID,
		Amount:         m.intent.Amount,
		CardNumber:     form.CardNumber,
		CardholderName: form.CardholderName,
		ExpiryMonth:    form.ExpiryMonth,
		ExpiryYear:     form.ExpiryYear,
		CVV:            form.CVV,
	}
	attempt := m.ctx
	m.mu.Unlock()

	result, err := m.deps.Gateway.ProcessPayment(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	if !m.open || attempt.Err() != nil {
		return nil // torn down mid-flight, nothing to display
	}
	if err != nil {
		m.deps.Logger.Error("payment processing failed", zap.Error(err))
		m.result = domain.PaymentResult{
			Status:       domain.PaymentStatusRejected,
			ErrorMessage: genericPaymentError,
		}
		return nil
	}

	m.result = result
	m.handleOutcomeLocked(result, m.cfg.AutoCloseNewCard, false)
	return nil
}

// PayWithSavedMethod charges the selected saved method. Missing
// preconditions come back as typed errors; the HTTP layer treats them as
// guard clauses, not user-facing failures.
func (m *Machine) PayWithSavedMethod(ctx context.Context) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return ErrNotOpen
	}
	if m.submitting {
		m.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if m.selectedID == "" {
		m.mu.Unlock()
		return ErrNoMethodSelected
	}
	if m.userID == "" {
		m.mu.Unlock()
		return ErrNoUserID
	}

	m.submitting = true
	m.result = domain.PaymentResult{Status: domain.PaymentStatusProcessing}
	methodID := m.selectedID
	attempt := m.ctx
	m.mu.Unlock()

	result, err := m.deps.Gateway.ProcessPaymentWithSavedMethod(
		ctx, methodID, m.intent.Amount, m.intent.ProductID, m.intent.Quantity, m.userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	if !m.open || attempt.Err() != nil {
		return nil
	}
	if err != nil {
		m.deps.Logger.Error("saved-method payment failed",
			zap.String("method_id", methodID), zap.Error(err))
		m.result = domain.PaymentResult{
			Status:       domain.PaymentStatusRejected,
			ErrorMessage: genericPaymentError,
		}
		return nil
	}

	m.result = result
	m.handleOutcomeLocked(result, m.cfg.AutoCloseSavedMethod, true)
	return nil
}

// handleOutcomeLocked applies the shared post-submission transitions:
// approved schedules auto-close (and best-effort registration for the
// saved-method path), pending starts the poll loop, rejected just stays
// on screen. Caller holds the lock.
func (m *Machine) handleOutcomeLocked(result domain.PaymentResult, closeDelay time.Duration, register bool) {
	switch result.Status {
	case domain.PaymentStatusApproved:
		if register {
			if method := m.findMethodLocked(m.selectedID); method != nil {
				m.registerMethodTransaction(*method)
			}
		}
		m.deps.Cart.RemoveFromCart(m.intent.ProductID)
		m.scheduleAutoCloseLocked(closeDelay)
	case domain.PaymentStatusPending:
		if result.TransactionID != "" {
			m.startPollLocked(result.TransactionID)
		}
	}
}

// registerMethodTransaction records an approved saved-method charge with
// the registrar. Best effort: failures are logged, never surfaced.
func (m *Machine) registerMethodTransaction(method domain.PaymentMethod) {
	txn := payment.NewTransaction(domain.PaymentRequest{
		ProductID:      m.intent.ProductID,
		Quantity:       m.intent.Quantity,
		UserID:         m.userID,
		Amount:         m.intent.Amount,
		CardNumber:     method.CardNumber,
		CardholderName: method.CardholderName,
		ExpiryMonth:    method.ExpiryMonth,
		ExpiryYear:     method.ExpiryYear,
	})
	ctx := m.ctx
	go func() {
		if err := m.deps.Registrar.RegisterTransaction(ctx, txn); err != nil {
			m.deps.Logger.Error("transaction registration after approval failed",
				zap.String("method_id", method.ID), zap.Error(err))
		}
	}()
}

func (m *Machine) startPollLocked(transactionID string) {
	if m.polling {
		return
	}
	m.polling = true
	go m.pollPending(m.ctx, transactionID)
}

// pollPending rechecks a pending transaction until a terminal status
// comes back or the machine closes. Checks run strictly sequentially;
// the loop itself is unbounded, cancellation is the only other way out.
func (m *Machine) pollPending(ctx context.Context, transactionID string) {
	defer func() {
		m.mu.Lock()
		m.polling = false
		m.mu.Unlock()
	}()

	for {
		timer := time.NewTimer(m.cfg.PollWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}

		result, err := m.deps.Gateway.CheckPaymentStatus(ctx, transactionID)
		if err != nil {
			if ctx.Err() == nil {
				m.deps.Logger.Error("payment status check failed",
					zap.String("transaction_id", transactionID), zap.Error(err))
			}
			return
		}

		m.mu.Lock()
		if !m.open || ctx.Err() != nil {
			m.mu.Unlock()
			return
		}
		m.result = result

		switch result.Status {
		case domain.PaymentStatusPending:
			m.mu.Unlock()
		case domain.PaymentStatusApproved:
			if method := m.findMethodLocked(m.selectedID); method != nil && m.userID != "" {
				m.registerMethodTransaction(*method)
			}
			m.deps.Cart.RemoveFromCart(m.intent.ProductID)
			m.scheduleAutoCloseLocked(m.cfg.AutoClosePoll)
			m.mu.Unlock()
			return
		default: // rejected: show the error, no further retries
			m.mu.Unlock()
			return
		}
	}
}

func (m *Machine) scheduleAutoCloseLocked(d time.Duration) {
	if m.closeTimer != nil {
		m.closeTimer.Stop()
	}
	m.closeTimer = time.AfterFunc(d, func() {
		_ = m.Close(true)
	})
}

// Close tears the checkout down: cancels the poll loop and auto-close
// timer, resets the form and result, and clears the shared selection.
// It is blocked while a submission is processing unless forced.
func (m *Machine) Close(force bool) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return nil
	}
	if m.submitting && !force {
		m.mu.Unlock()
		return ErrProcessing
	}

	m.open = false
	if m.closeTimer != nil {
		m.closeTimer.Stop()
		m.closeTimer = nil
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.form = domain.CardFormData{}
	m.fieldErrors = nil
	m.result = domain.PaymentResult{Status: domain.PaymentStatusIdle}
	m.entryMode = EntryModeSavedMethods
	m.selectedID = ""
	m.submitting = false
	m.deps.Selection.SetSelected(nil)
	onClose := m.onClose
	m.mu.Unlock()

	if onClose != nil {
		onClose()
	}
	return nil
}

// View snapshots the machine for rendering.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	methods := make([]domain.PaymentMethod, len(m.savedMethods))
	copy(methods, m.savedMethods)

	var fieldErrs map[string]string
	if len(m.fieldErrors) > 0 {
		fieldErrs = make(map[string]string, len(m.fieldErrors))
		for k, v := range m.fieldErrors {
			fieldErrs[k] = v
		}
	}

	return View{
		Open:             m.open,
		Intent:           m.intent,
		EntryMode:        m.entryMode,
		Result:           m.result,
		SavedMethods:     methods,
		SelectedMethodID: m.selectedID,
		FieldErrors:      fieldErrs,
		Submitting:       m.submitting,
	}
}

func (m *Machine) findMethodLocked(id string) *domain.PaymentMethod {
	for i := range m.savedMethods {
		if m.savedMethods[i].ID == id {
			method := m.savedMethods[i]
			return &method
		}
	}
	return nil
}
