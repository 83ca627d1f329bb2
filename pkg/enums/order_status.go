package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order. The happy path is a
// linear progression paid -> processing -> shipped -> delivered; cancelled is
// an absorbing terminal state reachable from any non-terminal status.
// pending_payment exists as the pre-payment initial state but is never
// produced by checkout, which records orders as paid.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPendingPayment: 0,
	OrderStatusPaid:           1,
	OrderStatusProcessing:     2,
	OrderStatusShipped:        3,
	OrderStatusDelivered:      4,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered || o == OrderStatusCancelled
}

// CanTransitionTo reports whether the target status is a legal next step:
// forward moves along the linear progression, or cancellation from any
// non-terminal state.
func (o OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !o.IsValid() || !target.IsValid() || o == target {
		return false
	}
	if target == OrderStatusCancelled {
		return !o.IsTerminal()
	}
	if o.IsTerminal() {
		return false
	}
	return orderStatusRank[target] > orderStatusRank[o]
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
