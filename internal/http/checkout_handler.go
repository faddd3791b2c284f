package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/desobsesor/simple-payment-web/internal/catalog"
	"github.com/desobsesor/simple-payment-web/internal/checkout"
	"github.com/desobsesor/simple-payment-web/internal/currency"
	"github.com/desobsesor/simple-payment-web/internal/domain"
)

// CheckoutHandler exposes the checkout machine over HTTP. Each user has at
// most one active checkout; all routes below operate on that one.
type CheckoutHandler struct {
	checkouts *checkout.Registry
	catalog   *catalog.Store
	logger    *zap.Logger
}

func NewCheckoutHandler(checkouts *checkout.Registry, store *catalog.Store, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts: checkouts,
		catalog:   store,
		logger:    logger,
	}
}

type OpenCheckoutRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SubmitCardRequestDTO struct {
	CardNumber     string `json:"card_number"`
	CardholderName string `json:"cardholder_name"`
	ExpiryMonth    string `json:"expiry_month"`
	ExpiryYear     string `json:"expiry_year"`
	CVV            string `json:"cvv"`
}

type CheckoutResponse struct {
	checkout.View
	FormattedAmount string `json:"formatted_amount"`
}

func checkoutResponse(m *checkout.Machine) CheckoutResponse {
	view := m.View()
	return CheckoutResponse{
		View:            view,
		FormattedAmount: currency.Format(view.Intent.Amount),
	}
}

func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req OpenCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.catalog.Get(req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if product.Stock < req.Quantity {
		respondError(w, http.StatusConflict, "out_of_stock", "not enough stock for the requested quantity")
		return
	}

	intent := checkout.Intent{
		ProductID:   product.ProductID,
		ProductName: product.Name,
		Quantity:    req.Quantity,
		Amount:      product.Price * float64(req.Quantity),
	}

	machine, err := h.checkouts.Open(r.Context(), userID, intent)
	if err != nil {
		if errors.Is(err, checkout.ErrAlreadyOpen) {
			respondError(w, http.StatusConflict, "checkout_open", "a checkout is already in progress")
			return
		}
		h.logger.Error("opening checkout failed",
			zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	h.logger.Info("checkout opened",
		zap.String("user_id", userID),
		zap.String("product_id", intent.ProductID),
		zap.Float64("amount", intent.Amount),
		zap.String("request_id", getRequestID(r.Context())))

	respondJSON(w, http.StatusCreated, checkoutResponse(machine))
}

func (h *CheckoutHandler) View(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machineFor(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, checkoutResponse(machine))
}

// SubmitCard runs the new-card payment flow. Validation failures come back
// as 422 with the field errors on the checkout view; the payment outcome
// itself is always read from the view, not from the HTTP status.
func (h *CheckoutHandler) SubmitCard(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machineFor(w, r)
	if !ok {
		return
	}

	var req SubmitCardRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	form := domain.CardFormData{
		CardNumber:     req.CardNumber,
		CardholderName: req.CardholderName,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		CVV:            req.CVV,
	}

	err := machine.SubmitCard(r.Context(), form)
	switch {
	case errors.Is(err, checkout.ErrInvalidCard):
		respondJSON(w, http.StatusUnprocessableEntity, checkoutResponse(machine))
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", "a payment is already processing")
	case errors.Is(err, checkout.ErrNotOpen):
		respondError(w, http.StatusNotFound, "checkout_not_open", "no checkout in progress")
	case err != nil:
		h.logger.Error("card submission failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	default:
		respondJSON(w, http.StatusOK, checkoutResponse(machine))
	}
}

// PayWithSavedMethod charges the selected saved card. Missing-precondition
// errors are logged and swallowed; the caller just sees the unchanged view.
func (h *CheckoutHandler) PayWithSavedMethod(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machineFor(w, r)
	if !ok {
		return
	}

	err := machine.PayWithSavedMethod(r.Context())
	switch {
	case errors.Is(err, checkout.ErrNoUserID), errors.Is(err, checkout.ErrNoMethodSelected):
		h.logger.Warn("saved-method payment skipped",
			zap.String("user_id", getUserIDFromContext(r.Context())), zap.Error(err))
		respondJSON(w, http.StatusOK, checkoutResponse(machine))
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", "a payment is already processing")
	case errors.Is(err, checkout.ErrNotOpen):
		respondError(w, http.StatusNotFound, "checkout_not_open", "no checkout in progress")
	case err != nil:
		h.logger.Error("saved-method payment failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	default:
		respondJSON(w, http.StatusOK, checkoutResponse(machine))
	}
}

func (h *CheckoutHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machineFor(w, r)
	if !ok {
		return
	}

	methodID := chi.URLParam(r, "method_id")
	if methodID == "" {
		respondError(w, http.StatusBadRequest, "invalid_method_id", "method_id is required")
		return
	}

	if err := machine.SelectMethod(methodID); err != nil {
		if errors.Is(err, checkout.ErrSubmissionInFlight) {
			respondError(w, http.StatusConflict, "submission_in_flight", "a payment is already processing")
			return
		}
		respondError(w, http.StatusNotFound, "checkout_not_open", "no checkout in progress")
		return
	}

	respondJSON(w, http.StatusOK, checkoutResponse(machine))
}

func (h *CheckoutHandler) AddNewCard(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machineFor(w, r)
	if !ok {
		return
	}

	if err := machine.AddNewCard(); err != nil {
		if errors.Is(err, checkout.ErrSubmissionInFlight) {
			respondError(w, http.StatusConflict, "submission_in_flight", "a payment is already processing")
			return
		}
		respondError(w, http.StatusNotFound, "checkout_not_open", "no checkout in progress")
		return
	}

	respondJSON(w, http.StatusOK, checkoutResponse(machine))
}

func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machineFor(w, r)
	if !ok {
		return
	}

	force := r.URL.Query().Get("force") == "true"
	if err := machine.Close(force); err != nil {
		respondError(w, http.StatusConflict, "payment_processing", "cannot close while a payment is processing")
		return
	}

	respondJSON(w, http.StatusOK, checkoutResponse(machine))
}

func (h *CheckoutHandler) machineFor(w http.ResponseWriter, r *http.Request) (*checkout.Machine, bool) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return nil, false
	}

	machine, ok := h.checkouts.Get(userID)
	if !ok {
		respondError(w, http.StatusNotFound, "checkout_not_open", "no checkout in progress")
		return nil, false
	}
	return machine, true
}
