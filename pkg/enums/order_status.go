package enums

import "fmt"

// OrderStatus tracks the fulfillment lifecycle of an order. Progression is
// strictly monotonic; an order never moves backwards through the stages.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusPicking   OrderStatus = "picking"
	OrderStatusPicked    OrderStatus = "picked"
	OrderStatusPacking   OrderStatus = "packing"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusDelivered OrderStatus = "delivered"
)

var orderStatusOrder = []OrderStatus{
	OrderStatusNew,
	OrderStatusPicking,
	OrderStatusPicked,
	OrderStatusPacking,
	OrderStatusPacked,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range orderStatusOrder {
		if candidate == s {
			return true
		}
	}
	return false
}

// Rank returns the position of the status in the lifecycle, or -1 when the
// value is unknown.
func (s OrderStatus) Rank() int {
	for i, candidate := range orderStatusOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// CanAdvanceTo reports whether moving to next is the single forward step
// allowed from the current status.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	rank := s.Rank()
	nextRank := next.Rank()
	return rank >= 0 && nextRank == rank+1
}

// Terminal reports whether no further stage transitions exist.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range orderStatusOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
