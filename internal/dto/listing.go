package dto

// Listing carries the identity of one ad as submitted by the caller.
type Listing struct {
	Description string  `json:"description" validate:"required_without=VIN,max=20000"`
	VIN         string  `json:"vin,omitempty" validate:"omitempty,max=17"`
	Location    string  `json:"location,omitempty" validate:"omitempty,max=64"`
	SellerType  string  `json:"seller_type,omitempty" validate:"omitempty,oneof=private dealer"`
	PriceUSD    float64 `json:"price_usd,omitempty" validate:"gte=0"`
	Brand       string  `json:"brand,omitempty"`
	Model       string  `json:"model,omitempty"`
	Year        int     `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
}
