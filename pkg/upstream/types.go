package upstream

import (
	"time"

	"github.com/simkidd/dwec-winery-storefront/pkg/types"
)

// Product is a catalog entry as served by the commerce API. Prices arrive in
// naira; snapshot conversion to kobo happens at the mapping boundary.
type Product struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Brand       string           `json:"brand"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	Category    Category         `json:"category"`
	Images      []string         `json:"images"`
	InStock     bool             `json:"inStock"`
	Variants    []ProductVariant `json:"variations"`
}

// ProductVariant is a purchasable variation of a product (bottle size, pack).
type ProductVariant struct {
	ID    string  `json:"_id"`
	Label string  `json:"type"`
	Price float64 `json:"price"`
}

// Snapshot converts the catalog entry into the embedded form cart lines carry.
func (p Product) Snapshot() types.ProductSnapshot {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return types.ProductSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Brand:     p.Brand,
		PriceKobo: types.KoboFromNaira(p.Price),
		ImageURL:  image,
	}
}

// Snapshot converts the variant into its embedded cart form.
func (v ProductVariant) Snapshot() types.VariantSnapshot {
	return types.VariantSnapshot{
		ID:        v.ID,
		Label:     v.Label,
		PriceKobo: types.KoboFromNaira(v.Price),
	}
}

// Category is a catalog grouping.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Ad is a promotional placement from the ads feed.
type Ad struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	ImageURL string `json:"image"`
	LinkURL  string `json:"link"`
	Active   bool   `json:"isActive"`
}

// ProductQuery carries list filters passed through to the catalog.
type ProductQuery struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}

// Order is a placed order as reported by the commerce API.
type Order struct {
	ID           string      `json:"_id"`
	TrackingID   string      `json:"trackingId"`
	Items        []OrderItem `json:"products"`
	TotalNaira   float64     `json:"totalAmount"`
	DeliveryFee  float64     `json:"deliveryFee"`
	Status       string      `json:"status"`
	PaymentRef   string      `json:"paymentReference"`
	DeliveryArea string      `json:"deliveryArea"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// OrderItem is one purchased line.
type OrderItem struct {
	ProductID string  `json:"product"`
	VariantID string  `json:"variation,omitempty"`
	Name      string  `json:"name"`
	Quantity  int     `json:"qty"`
	Price     float64 `json:"price"`
}

// CreateOrderRequest is the payload for placing an order after payment.
type CreateOrderRequest struct {
	Items            []CreateOrderItem `json:"products"`
	DeliveryAreaID   string            `json:"deliveryAreaId"`
	DeliveryFee      float64           `json:"deliveryFee"`
	TotalAmount      float64           `json:"totalAmount"`
	PaymentReference string            `json:"paymentReference"`
}

// CreateOrderItem is one line of a create-order payload.
type CreateOrderItem struct {
	ProductID string  `json:"product"`
	VariantID string  `json:"variation,omitempty"`
	Quantity  int     `json:"qty"`
	Price     float64 `json:"price"`
}

// PaymentInitRequest asks the commerce API for a Paystack transaction.
type PaymentInitRequest struct {
	AmountKobo int    `json:"amount"`
	Email      string `json:"email"`
	Reference  string `json:"reference,omitempty"`
}

// PaymentInit is the Paystack initialization handed back to the widget.
type PaymentInit struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// PaymentVerification is the result of verifying a Paystack reference.
type PaymentVerification struct {
	Reference  string `json:"reference"`
	Status     string `json:"status"`
	AmountKobo int    `json:"amount"`
}

// Succeeded reports whether Paystack settled the transaction.
func (v PaymentVerification) Succeeded() bool {
	return v.Status == "success"
}
