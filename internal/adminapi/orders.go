package adminapi

import (
	"context"
	"fmt"
)

// Order statuses used by the backend.
const (
	OrderStatusPending   = "Pending"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

// OrderItem is one line of an order.
type OrderItem struct {
	TeaName     string  `json:"tea_name"`
	PackageName string  `json:"package_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order is a customer order with its shipment state.
type Order struct {
	OrderID        string      `json:"order_id"`
	CustomerName   string      `json:"customer_name"`
	Email          string      `json:"email"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"total_amount"`
	Status         string      `json:"status"`
	PaymentStatus  string      `json:"payment_status"`
	ShipmentStatus string      `json:"shipment_status"`
	AWB            string      `json:"awb"`
	LabelPDF       string      `json:"label_pdf"`
	CreatedAt      string      `json:"created_at"`
}

type ordersResponse struct {
	Success bool    `json:"success"`
	Orders  []Order `json:"orders"`
}

// ListOrders fetches every order; pagination happens client-side.
func (client *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var decoded ordersResponse
	if err := client.do(ctx, "GET", "/admin/orders", nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Orders, nil
}

// UpdateOrderStatus sets the order lifecycle status.
func (client *Client) UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	payload := struct {
		Status string `json:"status"`
	}{Status: status}
	return client.do(ctx, "PUT", "/admin/orders/"+orderID+"/status", payload, nil)
}

// UpdatePaymentStatus sets the payment status.
func (client *Client) UpdatePaymentStatus(ctx context.Context, orderID string, paymentStatus string) error {
	payload := struct {
		PaymentStatus string `json:"payment_status"`
	}{PaymentStatus: paymentStatus}
	return client.do(ctx, "PUT", "/admin/orders/"+orderID+"/payment", payload, nil)
}

// Shipment is the carrier booking created for an order.
type Shipment struct {
	AWB      string `json:"awb"`
	Courier  string `json:"courier"`
	LabelPDF string `json:"label_pdf"`
}

type shipmentResponse struct {
	Success  bool     `json:"success"`
	Shipment Shipment `json:"shipment"`
}

// CreateShipment books a shipment for the order and returns the AWB.
func (client *Client) CreateShipment(ctx context.Context, orderID string) (Shipment, error) {
	var decoded shipmentResponse
	if err := client.do(ctx, "POST", "/admin/orders/"+orderID+"/shipment", nil, &decoded); err != nil {
		return Shipment{}, err
	}
	return decoded.Shipment, nil
}

// CancelShipment cancels the order's shipment with the carrier.
func (client *Client) CancelShipment(ctx context.Context, orderID string) error {
	return client.do(ctx, "POST", "/admin/orders/"+orderID+"/shipment/cancel", nil, nil)
}

type labelResponse struct {
	Success  bool   `json:"success"`
	LabelPDF string `json:"label_pdf"`
}

// ShipmentLabel returns the URL of the printable shipping label.
func (client *Client) ShipmentLabel(ctx context.Context, orderID string) (string, error) {
	var decoded labelResponse
	if err := client.do(ctx, "GET", "/admin/orders/"+orderID+"/shipment/label", nil, &decoded); err != nil {
		return "", err
	}
	if decoded.LabelPDF == "" {
		return "", fmt.Errorf("api_client.shipment_label: %w", &APIError{StatusCode: 404, Message: "label not generated"})
	}
	return decoded.LabelPDF, nil
}

// TrackingScan is one carrier checkpoint.
type TrackingScan struct {
	Location string `json:"ScannedLocation"`
	Status   string `json:"Instructions"`
	Time     string `json:"StatusDateTime"`
}

// TrackingShipment mirrors the carrier's shipment tracking block.
type TrackingShipment struct {
	Status string         `json:"Status"`
	Scans  []TrackingScan `json:"Scans"`
}

// Tracking is the carrier payload returned for an order.
type Tracking struct {
	ShipmentData []TrackingShipment `json:"ShipmentData"`
}

type trackingResponse struct {
	Success  bool     `json:"success"`
	Tracking Tracking `json:"tracking"`
}

// TrackShipment fetches the carrier tracking history for the order.
func (client *Client) TrackShipment(ctx context.Context, orderID string) (Tracking, error) {
	var decoded trackingResponse
	if err := client.do(ctx, "GET", "/admin/orders/"+orderID+"/tracking", nil, &decoded); err != nil {
		return Tracking{}, err
	}
	return decoded.Tracking, nil
}

// DashboardStats are the aggregate figures on the dashboard page.
type DashboardStats struct {
	TotalSales             float64 `json:"totalSales"`
	SalesChange            float64 `json:"salesChange"`
	TotalOrders            int     `json:"totalOrders"`
	OrdersChange           float64 `json:"ordersChange"`
	PendingCount           int     `json:"pendingCount"`
	CancelledCount         int     `json:"cancelledCount"`
	PendingCancelledChange float64 `json:"pendingCancelledChange"`
}

type dashboardStatsResponse struct {
	Success bool           `json:"success"`
	Stats   DashboardStats `json:"stats"`
}

// FetchDashboardStats fetches the aggregate dashboard metrics.
func (client *Client) FetchDashboardStats(ctx context.Context) (DashboardStats, error) {
	var decoded dashboardStatsResponse
	if err := client.do(ctx, "GET", "/admin/orders/dashboard/stats", nil, &decoded); err != nil {
		return DashboardStats{}, err
	}
	return decoded.Stats, nil
}

// MonthlySale is one month's sales total.
type MonthlySale struct {
	Month      string  `json:"month"`
	TotalSales float64 `json:"total_sales"`
}

type monthlySalesResponse struct {
	Success bool          `json:"success"`
	Data    []MonthlySale `json:"data"`
}

// FetchMonthlySales fetches per-month sales totals for the dashboard chart.
func (client *Client) FetchMonthlySales(ctx context.Context) ([]MonthlySale, error) {
	var decoded monthlySalesResponse
	if err := client.do(ctx, "GET", "/admin/orders/dashboard/monthly-sales", nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Data, nil
}
