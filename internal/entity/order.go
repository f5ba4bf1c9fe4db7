package entity

import (
	"time"

	"github.com/joseph-ayodele/order-assistant/constants"
)

// Order represents an imported purchase order for data transfer between layers.
type Order struct {
	ID             int64                 `json:"id"`
	OrderNumber    string                `json:"order_number"`
	OrderDate      time.Time             `json:"order_date"`
	Status         constants.OrderStatus `json:"status"`
	SourceFilename string                `json:"filename"`
	CreatedAt      time.Time             `json:"created_at"`
	Items          []OrderItem           `json:"items,omitempty"`
	ItemsCount     int                   `json:"items_count"`
}

// OrderItem is one line of an Order.
type OrderItem struct {
	ID        int64                `json:"id"`
	OrderID   int64                `json:"order_id"`
	RowNumber int                  `json:"row_number"`
	Name      string               `json:"name"`
	Quantity  int                  `json:"quantity"`
	Unit      string               `json:"unit"`
	Code      *string              `json:"code,omitempty"`
	Status    constants.ItemStatus `json:"status"`
}
