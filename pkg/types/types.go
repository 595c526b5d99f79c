package types

// SuccessEnvelope wraps every successful API payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the single error shape surfaced to the UI layer.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ProductSnapshot is the product state embedded on a cart line or favorite
// at the time it was captured.
type ProductSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	Brand     string `json:"brand,omitempty"`
	PriceKobo int    `json:"price_kobo"`
	ImageURL  string `json:"image_url,omitempty"`
}

// VariantSnapshot captures the selected product variant, when one exists.
type VariantSnapshot struct {
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	PriceKobo int    `json:"price_kobo"`
}

// UnitPriceKobo resolves the effective unit price for a product/variant pair.
// A selected variant always wins over the base product price.
func UnitPriceKobo(product ProductSnapshot, variant *VariantSnapshot) int {
	if variant != nil && variant.PriceKobo > 0 {
		return variant.PriceKobo
	}
	return product.PriceKobo
}

// DeliveryArea is a serviceable area with its flat delivery fee.
type DeliveryArea struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	FeeKobo int    `json:"fee_kobo"`
}

// UserProfile is the authenticated user's profile as returned by the
// upstream who-am-i endpoint.
type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}
