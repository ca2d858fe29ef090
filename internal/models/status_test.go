package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neoshop/neoshop-platform/internal/models"
)

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, models.OrderStatusOutForDelivery.Valid())
	assert.False(t, models.OrderStatus("dispatched").Valid())
	assert.False(t, models.OrderStatus("").Valid())
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		allowed bool
	}{
		{name: "pending to confirmed", from: models.OrderStatusPending, to: models.OrderStatusConfirmed, allowed: true},
		{name: "confirmed to shipped skips processing", from: models.OrderStatusConfirmed, to: models.OrderStatusShipped, allowed: true},
		{name: "shipped to delivered skips out_for_delivery", from: models.OrderStatusShipped, to: models.OrderStatusDelivered, allowed: true},
		{name: "delivered back to shipped", from: models.OrderStatusDelivered, to: models.OrderStatusShipped, allowed: false},
		{name: "same status is not a transition", from: models.OrderStatusProcessing, to: models.OrderStatusProcessing, allowed: false},
		{name: "cancel from pending", from: models.OrderStatusPending, to: models.OrderStatusCancelled, allowed: true},
		{name: "cancel from processing", from: models.OrderStatusProcessing, to: models.OrderStatusCancelled, allowed: true},
		{name: "cancel after shipped", from: models.OrderStatusShipped, to: models.OrderStatusCancelled, allowed: false},
		{name: "return only after delivery", from: models.OrderStatusDelivered, to: models.OrderStatusReturned, allowed: true},
		{name: "return before delivery", from: models.OrderStatusOutForDelivery, to: models.OrderStatusReturned, allowed: false},
		{name: "refund from cancelled", from: models.OrderStatusCancelled, to: models.OrderStatusRefunded, allowed: true},
		{name: "refund from returned", from: models.OrderStatusReturned, to: models.OrderStatusRefunded, allowed: true},
		{name: "refund from delivered", from: models.OrderStatusDelivered, to: models.OrderStatusRefunded, allowed: false},
		{name: "cancelled is terminal for fulfilment", from: models.OrderStatusCancelled, to: models.OrderStatusConfirmed, allowed: false},
		{name: "refunded is terminal", from: models.OrderStatusRefunded, to: models.OrderStatusCancelled, allowed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestCanBeCancelled(t *testing.T) {
	assert.True(t, models.OrderStatusConfirmed.CanBeCancelled())
	assert.False(t, models.OrderStatusShipped.CanBeCancelled())
	assert.False(t, models.OrderStatusDelivered.CanBeCancelled())
}
