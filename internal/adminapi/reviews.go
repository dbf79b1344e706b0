package adminapi

import "context"

// Review is a customer review awaiting moderation.
type Review struct {
	ReviewID     int64  `json:"review_id"`
	CustomerName string `json:"customer_name"`
	TeaName      string `json:"tea_name"`
	PackageName  string `json:"package_name"`
	OrderNumber  string `json:"order_number"`
	Rating       int    `json:"rating"`
	ReviewText   string `json:"review_text"`
	CreatedAt    string `json:"created_at"`
}

type reviewsResponse struct {
	Success bool     `json:"success"`
	Reviews []Review `json:"reviews"`
}

// ListReviews fetches every review.
func (client *Client) ListReviews(ctx context.Context) ([]Review, error) {
	var decoded reviewsResponse
	if err := client.do(ctx, "GET", "/admin/reviews", nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Reviews, nil
}

// DeleteReview removes a review.
func (client *Client) DeleteReview(ctx context.Context, reviewID int64) error {
	return client.do(ctx, "DELETE", "/admin/reviews/"+formatID(reviewID), nil, nil)
}
