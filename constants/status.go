package constants

// OrderStatus is the canonical status for rows in orders.
type OrderStatus string

// Stable values (store these exact strings in DB).
const (
	OrderStatusNew       OrderStatus = "new"       // freshly imported
	OrderStatusAssembled OrderStatus = "assembled" // picked and packed
	OrderStatusArchived  OrderStatus = "archived"  // moved out of the working list
)

// ItemStatus is the canonical status for rows in order_items.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusSkipped   ItemStatus = "skipped"
)

var (
	orderStatuses = []OrderStatus{OrderStatusNew, OrderStatusAssembled, OrderStatusArchived}
	itemStatuses  = []ItemStatus{ItemStatusPending, ItemStatusCompleted, ItemStatusSkipped}
)

// ParseOrderStatus returns the status matching s (case-insensitive).
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range orderStatuses {
		if equalFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// ParseItemStatus returns the status matching s (case-insensitive).
func ParseItemStatus(s string) (ItemStatus, bool) {
	for _, st := range itemStatuses {
		if equalFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// CompletionStatuses are the statuses an order may be closed with.
func CompletionStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusAssembled, OrderStatusArchived}
}
