// internal/domain/order/entity.go
package order

import (
	"context"
	"time"
)

// OrderType represents how the order is fulfilled
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

// StatusPending is the only status the engine ever submits; the remote
// service owns the rest of the lifecycle.
const StatusPending = "pending"

// CustomerInfo identifies the ordering customer
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// TaxDetails is the tax snapshot forwarded verbatim on the wire
type TaxDetails struct {
	TaxName     string  `json:"taxName"`
	Percentage  float64 `json:"percentage"`
	CountryCode string  `json:"countryCode"`
	IsCompound  bool    `json:"isCompound"`
}

// TaxContext is supplied by the tax collaborator at submission build time;
// the submitter applies it as-is and never recomputes rates itself.
type TaxContext struct {
	Rate    float64
	Details TaxDetails
}

// DraftLine is the flat wire shape of one cart line
type DraftLine struct {
	MenuItemID uint   `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Price      int64  `json:"price"`
	Notes      string `json:"notes"`
	Subtotal   int64  `json:"subtotal"`
}

// Draft is the ephemeral order payload built at submission time. It is never
// stored; it exists only for the duration of one submission attempt.
type Draft struct {
	RestaurantID  string       `json:"restaurantId"`
	BranchID      string       `json:"branchId"`
	TableID       *string      `json:"tableId"`
	Items         []DraftLine  `json:"items"`
	CustomerInfo  CustomerInfo `json:"customerInfo"`
	OrderType     OrderType    `json:"orderType"`
	PaymentMethod string       `json:"paymentMethod"`
	PaymentStatus string       `json:"paymentStatus,omitempty"`
	Status        string       `json:"status"`
	Notes         string       `json:"notes"`
	TaxAmount     int64        `json:"taxAmount"`
	TaxDetails    TaxDetails   `json:"taxDetails"`
	Subtotal      int64        `json:"subtotal"`
	Total         int64        `json:"total"`
}

// Order is the remote service's view of a created order
type Order struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	Total       int64     `json:"total"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service is the remote order service collaborator
type Service interface {
	CreateOrder(ctx context.Context, draft *Draft) (*Order, error)
}
