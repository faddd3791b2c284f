package payment

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/desobsesor/simple-payment-web/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutcomeSource decides what the simulated gateway answers. Extracting it
// lets tests feed deterministic sequences and leaves the door open for a
// real processor.
type OutcomeSource interface {
	// NewTransactionID generates the id for a new-card charge.
	NewTransactionID() string

	// ProcessOutcome classifies a new-card charge. Exactly one sample
	// is drawn per call.
	ProcessOutcome() domain.PaymentStatus

	// StatusCheckOutcome classifies a pending-transaction recheck.
	StatusCheckOutcome() domain.PaymentStatus
}

// RandomOutcomes is the production OutcomeSource. The transaction id is
// derived from its own draw, taken before the single outcome draw.
type RandomOutcomes struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomOutcomes() *RandomOutcomes {
	return &RandomOutcomes{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *RandomOutcomes) NewTransactionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := strconv.FormatUint(r.rng.Uint64(), 36)
	if len(id) > 8 {
		id = id[:8]
	}
	return "TX-" + strings.ToUpper(id)
}

// ProcessOutcome: 70% approved, 20% pending, 10% rejected.
func (r *RandomOutcomes) ProcessOutcome() domain.PaymentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return classify(r.rng.Float64(), 0.7, 0.9)
}

// StatusCheckOutcome: 80% approved, 10% pending, 10% rejected.
func (r *RandomOutcomes) StatusCheckOutcome() domain.PaymentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return classify(r.rng.Float64(), 0.8, 0.9)
}

func classify(sample, approvedBelow, pendingBelow float64) domain.PaymentStatus {
	switch {
	case sample < approvedBelow:
		return domain.PaymentStatusApproved
	case sample < pendingBelow:
		return domain.PaymentStatusPending
	default:
		return domain.PaymentStatusRejected
	}
}

// SimulatorConfig holds the artificial gateway latencies. Tests set them
// to zero.
type SimulatorConfig struct {
	ProcessDelay     time.Duration
	StatusCheckDelay time.Duration
	SavedMethodDelay time.Duration
}

func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		ProcessDelay:     4 * time.Second,
		StatusCheckDelay: 1500 * time.Millisecond,
		SavedMethodDelay: 2 * time.Second,
	}
}

// Simulator stands in for a real payment gateway. Outcomes are randomized
// via the OutcomeSource; every charge is registered with the external
// transactions API, and a failed registration downgrades the charge to
// rejected no matter what was sampled.
type Simulator struct {
	outcomes  OutcomeSource
	registrar Registrar
	cfg       SimulatorConfig
	logger    *zap.Logger
}

func NewSimulator(outcomes OutcomeSource, registrar Registrar, cfg SimulatorConfig, logger *zap.Logger) *Simulator {
	return &Simulator{
		outcomes:  outcomes,
		registrar: registrar,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *Simulator) ProcessPayment(ctx context.Context, req domain.PaymentRequest) (domain.PaymentResult, error) {
	if err := wait(ctx, s.cfg.ProcessDelay); err != nil {
		return domain.PaymentResult{}, err
	}

	transactionID := s.outcomes.NewTransactionID()

	result := domain.PaymentResult{
		Status:        s.outcomes.ProcessOutcome(),
		TransactionID: transactionID,
	}
	if result.Status == domain.PaymentStatusRejected {
		result.ErrorMessage = MsgIssuerRejected
	}

	if err := s.registrar.RegisterTransaction(ctx, NewTransaction(req)); err != nil {
		s.logger.Error("transaction registration failed",
			zap.String("transaction_id", transactionID),
			zap.Error(err))
		return domain.PaymentResult{
			Status:        domain.PaymentStatusRejected,
			TransactionID: transactionID,
			ErrorMessage:  MsgRegistrationFailed,
		}, nil
	}

	return result, nil
}

func (s *Simulator) CheckPaymentStatus(ctx context.Context, transactionID string) (domain.PaymentResult, error) {
	if err := wait(ctx, s.cfg.StatusCheckDelay); err != nil {
		return domain.PaymentResult{}, err
	}

	result := domain.PaymentResult{
		Status:        s.outcomes.StatusCheckOutcome(),
		TransactionID: transactionID,
	}
	if result.Status == domain.PaymentStatusRejected {
		result.ErrorMessage = MsgIssuerRejected
	}
	return result, nil
}

func (s *Simulator) ProcessPaymentWithSavedMethod(ctx context.Context, methodID string, amount float64, productID string, quantity int, userID string) (domain.PaymentResult, error) {
	s.logger.Debug("processing payment with saved method",
		zap.String("method_id", methodID),
		zap.Float64("amount", amount),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("user_id", userID))

	if err := wait(ctx, s.cfg.SavedMethodDelay); err != nil {
		return domain.PaymentResult{}, err
	}

	return domain.PaymentResult{
		Status:        domain.PaymentStatusApproved,
		TransactionID: "txn_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
	}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
