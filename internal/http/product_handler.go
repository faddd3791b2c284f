package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/desobsesor/simple-payment-web/internal/catalog"
	"github.com/desobsesor/simple-payment-web/internal/currency"
	"github.com/desobsesor/simple-payment-web/internal/domain"
)

type ProductHandler struct {
	catalog *catalog.Store
}

func NewProductHandler(store *catalog.Store) *ProductHandler {
	return &ProductHandler{catalog: store}
}

type ProductResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	FormattedPrice string  `json:"formatted_price"`
	ImageURL       string  `json:"image_url"`
	SKU            string  `json:"sku"`
	Category       string  `json:"category"`
	Stock          int     `json:"stock"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ProductID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		FormattedPrice: currency.Format(p.Price),
		ImageURL:       p.ImageURL,
		SKU:            p.SKU,
		Category:       p.Category,
		Stock:          p.Stock,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	listed := h.catalog.List()

	products := make([]ProductResponse, len(listed))
	for i, p := range listed {
		products[i] = toProductResponse(p)
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	product, err := h.catalog.Get(productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(product))
}
