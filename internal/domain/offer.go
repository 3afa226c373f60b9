package domain

// Offer is one merchant's quote for a catalog item.
type Offer struct {
	Merchant string  `json:"merchant" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	URL      string  `json:"url" validate:"required,http_url"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=5"`
	Reviews  int     `json:"reviews" validate:"gte=0"`
}
