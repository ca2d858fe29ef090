package models

type OrderStatus string

type PaymentStatus string

type PaymentMethod string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusReturned       OrderStatus = "returned"
	OrderStatusRefunded       OrderStatus = "refunded"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"

	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "net_banking"
	PaymentMethodWallet     PaymentMethod = "wallet"
	PaymentMethodCOD        PaymentMethod = "cod"
)

// fulfilmentRank orders the forward path of the lifecycle. Side branches
// (cancelled/returned/refunded) are not ranked; they have their own entry
// rules below.
var fulfilmentRank = map[OrderStatus]int{
	OrderStatusPending:        0,
	OrderStatusConfirmed:      1,
	OrderStatusProcessing:     2,
	OrderStatusShipped:        3,
	OrderStatusOutForDelivery: 4,
	OrderStatusDelivered:      5,
}

var cancellableStatuses = map[OrderStatus]bool{
	OrderStatusPending:    true,
	OrderStatusConfirmed:  true,
	OrderStatusProcessing: true,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusReturned, OrderStatusRefunded:
		return true
	}

	return false
}

// CanBeCancelled reports whether the order may still leave the forward path.
// Anything at or past shipped keeps its stock reservation.
func (s OrderStatus) CanBeCancelled() bool {
	return cancellableStatuses[s]
}

func (s OrderStatus) CanBeReturned() bool {
	return s == OrderStatusDelivered
}

// CanTransitionTo enforces the monotonic lifecycle: forward-only moves along
// the fulfilment path, cancellation from early states, returns only after
// delivery, and refunded as a terminal state off cancelled/returned.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return false
	}

	switch next {
	case OrderStatusCancelled:
		return s.CanBeCancelled()
	case OrderStatusReturned:
		return s.CanBeReturned()
	case OrderStatusRefunded:
		return s == OrderStatusCancelled || s == OrderStatusReturned
	}

	from, onPath := fulfilmentRank[s]
	to, nextOnPath := fulfilmentRank[next]

	return onPath && nextOnPath && to > from
}
