package models

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

func (s OrderStatus) IsValid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo enforces the order lifecycle: statuses advance strictly
// forward along pending -> confirmed -> processing -> shipped -> delivered,
// and any non-terminal status may move to cancelled.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == OrderStatusCancelled {
		return true
	}
	from, okFrom := orderStatusRank[s]
	to, okTo := orderStatusRank[target]
	return okFrom && okTo && to > from
}

// CanBeCancelled covers the owner-facing cancel path.
func (s OrderStatus) CanBeCancelled() bool {
	return !s.IsTerminal()
}

type ReturnStatus string

const (
	ReturnStatusRequested ReturnStatus = "requested"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusShipped   ReturnStatus = "shipped"
	ReturnStatusReceived  ReturnStatus = "received"
	ReturnStatusRefunded  ReturnStatus = "refunded"
	ReturnStatusCancelled ReturnStatus = "cancelled"
)

// returnTransitions is one-way: once a state is left it is never re-entered.
var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnStatusRequested: {ReturnStatusApproved, ReturnStatusRejected, ReturnStatusCancelled},
	ReturnStatusApproved:  {ReturnStatusShipped, ReturnStatusCancelled},
	ReturnStatusShipped:   {ReturnStatusReceived},
	ReturnStatusReceived:  {ReturnStatusRefunded},
}

func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusRequested, ReturnStatusApproved, ReturnStatusRejected,
		ReturnStatusShipped, ReturnStatusReceived, ReturnStatusRefunded, ReturnStatusCancelled:
		return true
	}
	return false
}

func (s ReturnStatus) IsTerminal() bool {
	return s == ReturnStatusRejected || s == ReturnStatusRefunded || s == ReturnStatusCancelled
}

func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	for _, next := range returnTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// CanBeCancelledByOwner limits owner cancellation to the early states.
func (s ReturnStatus) CanBeCancelledByOwner() bool {
	return s == ReturnStatusRequested || s == ReturnStatusApproved
}
