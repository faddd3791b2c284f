package domain

// Product is a catalog entry as served by the products API.
type Product struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	SKU         string  `json:"sku"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

// CartItem ties a product to the quantity the user wants to buy.
// Quantity is always kept within [1, Product.Stock] by the cart store.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
