package upstream

import (
	"context"
	"net/url"
	"strconv"

	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
)

// Products lists the catalog with optional filters.
func (c *Client) Products(ctx context.Context, cred Credentials, q ProductQuery) (*ProductPage, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var page ProductPage
	if err := c.get(ctx, "products", "/products", query, cred, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ProductBySlug fetches a single catalog entry.
func (c *Client) ProductBySlug(ctx context.Context, cred Credentials, slug string) (*Product, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	var product Product
	if err := c.get(ctx, "product_detail", "/products/"+url.PathEscape(slug), nil, cred, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Categories lists catalog groupings.
func (c *Client) Categories(ctx context.Context, cred Credentials) ([]Category, error) {
	var categories []Category
	if err := c.get(ctx, "categories", "/categories", nil, cred, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Ads fetches the promotional placements feed.
func (c *Client) Ads(ctx context.Context, cred Credentials) ([]Ad, error) {
	var ads []Ad
	if err := c.get(ctx, "ads", "/users/ads/get-ads", nil, cred, &ads); err != nil {
		return nil, err
	}
	return ads, nil
}

// Favorites reads the authenticated user's favorites mirror.
func (c *Client) Favorites(ctx context.Context, cred Credentials) ([]Product, error) {
	var favorites []Product
	if err := c.get(ctx, "favorites", "/users/favourites", nil, cred, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// ToggleFavorite flips the favorite flag for a product server-side.
func (c *Client) ToggleFavorite(ctx context.Context, cred Credentials, productID string) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	body := map[string]string{"productId": productID}
	return c.post(ctx, "toggle_favorite", "/users/favourites/toggle", cred, body, nil)
}

// Me resolves the bearer token to a user profile.
func (c *Client) Me(ctx context.Context, cred Credentials) (*types.UserProfile, error) {
	var profile types.UserProfile
	if err := c.get(ctx, "me", "/users/me", nil, cred, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UserOrders lists the authenticated user's order history.
func (c *Client) UserOrders(ctx context.Context, cred Credentials) ([]Order, error) {
	var orders []Order
	if err := c.get(ctx, "user_orders", "/users/orders/user-orders", nil, cred, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderByID fetches a single order belonging to the authenticated user.
func (c *Client) OrderByID(ctx context.Context, cred Credentials, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var order Order
	if err := c.get(ctx, "order_detail", "/users/orders/"+url.PathEscape(orderID), nil, cred, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder places an order after payment has settled.
func (c *Client) CreateOrder(ctx context.Context, cred Credentials, req CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.post(ctx, "create_order", "/users/orders/create-order", cred, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// InitializePaystackPayment requests a payment reference for the given total.
func (c *Client) InitializePaystackPayment(ctx context.Context, cred Credentials, req PaymentInitRequest) (*PaymentInit, error) {
	if req.AmountKobo <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	var init PaymentInit
	if err := c.post(ctx, "initialize_payment", "/users/orders/initialize-paystack-payment", cred, req, &init); err != nil {
		return nil, err
	}
	return &init, nil
}

// VerifyPaystackPayment checks the settlement status of a reference.
func (c *Client) VerifyPaystackPayment(ctx context.Context, cred Credentials, reference string) (*PaymentVerification, error) {
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	query := url.Values{"reference": {reference}}
	var verification PaymentVerification
	if err := c.get(ctx, "verify_payment", "/users/orders/verify-paystack-payment", query, cred, &verification); err != nil {
		return nil, err
	}
	return &verification, nil
}

// DeliveryAreas lists the serviceable delivery areas and their fees.
func (c *Client) DeliveryAreas(ctx context.Context, cred Credentials) ([]types.DeliveryArea, error) {
	var raw []struct {
		ID   string  `json:"_id"`
		Name string  `json:"name"`
		City string  `json:"city"`
		Fee  float64 `json:"fee"`
	}
	if err := c.get(ctx, "delivery_areas", "/delivery-areas", nil, cred, &raw); err != nil {
		return nil, err
	}
	areas := make([]types.DeliveryArea, 0, len(raw))
	for _, area := range raw {
		areas = append(areas, types.DeliveryArea{
			ID:      area.ID,
			Name:    area.Name,
			City:    area.City,
			FeeKobo: types.KoboFromNaira(area.Fee),
		})
	}
	return areas, nil
}
