package adminapi

import "context"

// Customer is a storefront customer as listed in the admin panel.
type Customer struct {
	CustomerID  string  `json:"customer_id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phone_number"`
	OrderCount  int     `json:"order_count"`
	TotalSpend  float64 `json:"total_spend"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

type customersResponse struct {
	Success   bool       `json:"success"`
	Customers []Customer `json:"customers"`
}

// ListCustomers fetches every customer; pagination happens client-side.
func (client *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var decoded customersResponse
	if err := client.do(ctx, "GET", "/admin/customers", nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Customers, nil
}

// CustomerStats are the headline figures above the customer table.
type CustomerStats struct {
	TotalCustomers   int     `json:"totalCustomers"`
	NewCustomers     int     `json:"newCustomers"`
	PercentageChange float64 `json:"percentageChange"`
}

type customerStatsResponse struct {
	Success bool          `json:"success"`
	Stats   CustomerStats `json:"stats"`
}

// FetchCustomerStats fetches customer aggregates.
func (client *Client) FetchCustomerStats(ctx context.Context) (CustomerStats, error) {
	var decoded customerStatsResponse
	if err := client.do(ctx, "GET", "/admin/customers/stats", nil, &decoded); err != nil {
		return CustomerStats{}, err
	}
	return decoded.Stats, nil
}

// MonthlyCustomers is one month's signup count.
type MonthlyCustomers struct {
	Month     string `json:"month"`
	Customers int    `json:"customers"`
}

type monthlyCustomersResponse struct {
	Success bool               `json:"success"`
	Data    []MonthlyCustomers `json:"data"`
}

// FetchMonthlyCustomers fetches per-month signup counts.
func (client *Client) FetchMonthlyCustomers(ctx context.Context) ([]MonthlyCustomers, error) {
	var decoded monthlyCustomersResponse
	if err := client.do(ctx, "GET", "/admin/customers/monthly-data", nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Data, nil
}

// DeleteCustomer removes a customer account.
func (client *Client) DeleteCustomer(ctx context.Context, customerID string) error {
	return client.do(ctx, "DELETE", "/admin/customers/"+customerID, nil, nil)
}
