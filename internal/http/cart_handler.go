package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/desobsesor/simple-payment-web/internal/cart"
	"github.com/desobsesor/simple-payment-web/internal/catalog"
	"github.com/desobsesor/simple-payment-web/internal/currency"
)

type CartHandler struct {
	carts   *cart.Registry
	catalog *catalog.Store
	logger  *zap.Logger
}

func NewCartHandler(carts *cart.Registry, store *catalog.Store, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: store,
		logger:  logger,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemResponse struct {
	Product   ProductResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal float64         `json:"line_total"`
}

type CartResponse struct {
	Items          []CartItemResponse `json:"items"`
	TotalItems     int                `json:"total_items"`
	TotalPrice     float64            `json:"total_price"`
	FormattedTotal string             `json:"formatted_total"`
}

func (h *CartHandler) cartResponse(store *cart.Store) CartResponse {
	snapshot := store.Items()
	items := make([]CartItemResponse, len(snapshot))
	for i, item := range snapshot {
		items[i] = CartItemResponse{
			Product:   toProductResponse(item.Product),
			Quantity:  item.Quantity,
			LineTotal: item.Product.Price * float64(item.Quantity),
		}
	}
	return CartResponse{
		Items:          items,
		TotalItems:     store.TotalItems(),
		TotalPrice:     store.TotalPrice(),
		FormattedTotal: currency.Format(store.TotalPrice()),
	}
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
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
	if product.Stock == 0 {
		respondError(w, http.StatusConflict, "out_of_stock", "product is out of stock")
		return
	}

	store := h.carts.For(userID)
	store.AddToCart(product, req.Quantity)

	h.logger.Info("cart item added",
		zap.String("user_id", userID),
		zap.String("product_id", req.ProductID),
		zap.Int("quantity", req.Quantity),
		zap.String("request_id", getRequestID(r.Context())))

	respondJSON(w, http.StatusCreated, h.cartResponse(store))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse(h.carts.For(userID)))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	store := h.carts.For(userID)
	store.UpdateQuantity(productID, req.Quantity)

	respondJSON(w, http.StatusOK, h.cartResponse(store))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	store := h.carts.For(userID)
	store.RemoveFromCart(productID)

	respondJSON(w, http.StatusOK, h.cartResponse(store))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	store := h.carts.For(userID)
	store.ClearCart()

	respondJSON(w, http.StatusOK, h.cartResponse(store))
}
