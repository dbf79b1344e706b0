package adminapi

import "context"

// Discount campaign types supported by the backend.
const (
	DiscountTypeCouponCode       = "Coupon Code"
	DiscountTypeDirectPercentage = "Direct Percentage"
	DiscountTypeFlatPriceOff     = "Flat Price Off"
	DiscountTypeBOGO             = "BOGO / Quantity Offer"
	DiscountTypeCartValueOffer   = "Cart Value Offer"
	DiscountTypeFreeProduct      = "Free Product"
)

// Discount is a promotional campaign. Value fields are populated according
// to the campaign type; the rest stay zero.
type Discount struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	Code               string   `json:"code"`
	DiscountPercentage float64  `json:"discount_percentage"`
	FlatDiscountAmount float64  `json:"flat_discount_amount"`
	BuyQuantity        int      `json:"buy_quantity"`
	GetQuantity        int      `json:"get_quantity"`
	MinCartValue       float64  `json:"min_cart_value"`
	FreeProduct        string   `json:"free_product"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	Status             string   `json:"status"`
	BannerImage        string   `json:"banner_image"`
	ThumbnailImage     string   `json:"thumbnail_image"`
	TeaIDs             []int64  `json:"tea_ids"`
}

// AppliesToAllTeas reports whether the campaign has no tea restriction;
// a campaign created without linked teas covers the whole catalog.
func (discount Discount) AppliesToAllTeas() bool {
	return len(discount.TeaIDs) == 0
}

// CreateDiscountRequest is the create payload. Optional value fields use
// omitempty so a coupon with only its required fields round-trips as a
// campaign that applies to all teas.
type CreateDiscountRequest struct {
	Name               string  `json:"name"`
	Type               string  `json:"type"`
	Code               string  `json:"code,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage,omitempty"`
	FlatDiscountAmount float64 `json:"flat_discount_amount,omitempty"`
	BuyQuantity        int     `json:"buy_quantity,omitempty"`
	GetQuantity        int     `json:"get_quantity,omitempty"`
	MinCartValue       float64 `json:"min_cart_value,omitempty"`
	FreeProduct        string  `json:"free_product,omitempty"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	Status             string  `json:"status,omitempty"`
	BannerImage        string  `json:"banner_image,omitempty"`
	ThumbnailImage     string  `json:"thumbnail_image,omitempty"`
	TeaIDs             []int64 `json:"tea_ids,omitempty"`
}

type discountsResponse struct {
	Success   bool       `json:"success"`
	Discounts []Discount `json:"discounts"`
}

type discountResponse struct {
	Success  bool     `json:"success"`
	Discount Discount `json:"discount"`
}

// ListDiscounts fetches campaigns, optionally filtered by status
// ("active" or "inactive"); an empty status fetches everything.
func (client *Client) ListDiscounts(ctx context.Context, status string) ([]Discount, error) {
	path := "/admin/discounts"
	if status != "" {
		path += "?status=" + status
	}
	var decoded discountsResponse
	if err := client.do(ctx, "GET", path, nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Discounts, nil
}

// CreateDiscount creates a campaign.
func (client *Client) CreateDiscount(ctx context.Context, request CreateDiscountRequest) (Discount, error) {
	var decoded discountResponse
	if err := client.do(ctx, "POST", "/admin/discounts", request, &decoded); err != nil {
		return Discount{}, err
	}
	return decoded.Discount, nil
}

// ToggleDiscountStatus flips a campaign between active and inactive.
func (client *Client) ToggleDiscountStatus(ctx context.Context, discountID int64) error {
	return client.do(ctx, "PATCH", discountPath(discountID)+"/toggle-status", nil, nil)
}

// DeleteDiscount removes a campaign.
func (client *Client) DeleteDiscount(ctx context.Context, discountID int64) error {
	return client.do(ctx, "DELETE", discountPath(discountID), nil, nil)
}

func discountPath(discountID int64) string {
	return "/admin/discounts/" + formatID(discountID)
}
