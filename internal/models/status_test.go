package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusForwardOnly(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusConfirmed))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusShipped), "forward skips allowed")
	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusDelivered))

	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusProcessing), "no backward moves")
	assert.False(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusConfirmed), "no self transitions")
}

func TestOrderStatusTerminalStates(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		assert.True(t, s.IsTerminal())
		assert.False(t, s.CanTransitionTo(OrderStatusCancelled))
		assert.False(t, s.CanBeCancelled())
	}

	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped} {
		assert.True(t, s.CanTransitionTo(OrderStatusCancelled))
		assert.True(t, s.CanBeCancelled())
	}
}

func TestOrderStatusValidity(t *testing.T) {
	assert.True(t, OrderStatusCancelled.IsValid())
	assert.False(t, OrderStatus("returned").IsValid())
}

func TestReturnStatusTransitions(t *testing.T) {
	assert.True(t, ReturnStatusRequested.CanTransitionTo(ReturnStatusApproved))
	assert.True(t, ReturnStatusRequested.CanTransitionTo(ReturnStatusRejected))
	assert.True(t, ReturnStatusRequested.CanTransitionTo(ReturnStatusCancelled))
	assert.True(t, ReturnStatusApproved.CanTransitionTo(ReturnStatusShipped))
	assert.True(t, ReturnStatusApproved.CanTransitionTo(ReturnStatusCancelled))
	assert.True(t, ReturnStatusShipped.CanTransitionTo(ReturnStatusReceived))
	assert.True(t, ReturnStatusReceived.CanTransitionTo(ReturnStatusRefunded))

	assert.False(t, ReturnStatusShipped.CanTransitionTo(ReturnStatusCancelled), "shipped goods must come back")
	assert.False(t, ReturnStatusApproved.CanTransitionTo(ReturnStatusRequested), "one-way only")
	assert.False(t, ReturnStatusRefunded.CanTransitionTo(ReturnStatusApproved))
	assert.False(t, ReturnStatusRejected.CanTransitionTo(ReturnStatusApproved))
}

func TestReturnStatusOwnerCancellation(t *testing.T) {
	assert.True(t, ReturnStatusRequested.CanBeCancelledByOwner())
	assert.True(t, ReturnStatusApproved.CanBeCancelledByOwner())
	assert.False(t, ReturnStatusShipped.CanBeCancelledByOwner())
	assert.False(t, ReturnStatusRefunded.CanBeCancelledByOwner())
}
