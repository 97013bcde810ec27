package service

import "github.com/creamcroissant/bakehub/internal/repository"

// orderFlow lists the forward step allowed from each non-terminal status.
var orderFlow = map[string]string{
	repository.OrderStatusInquiry:    repository.OrderStatusPending,
	repository.OrderStatusPending:    repository.OrderStatusConfirmed,
	repository.OrderStatusConfirmed:  repository.OrderStatusInProgress,
	repository.OrderStatusInProgress: repository.OrderStatusReady,
	repository.OrderStatusReady:      repository.OrderStatusDelivered,
}

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []string{
	repository.OrderStatusInquiry,
	repository.OrderStatusPending,
	repository.OrderStatusConfirmed,
	repository.OrderStatusInProgress,
	repository.OrderStatusReady,
	repository.OrderStatusDelivered,
	repository.OrderStatusCancelled,
}

func isKnownStatus(status string) bool {
	_, forward := orderFlow[status]
	return forward || isTerminalStatus(status)
}

func isTerminalStatus(status string) bool {
	return status == repository.OrderStatusDelivered || status == repository.OrderStatusCancelled
}

// CanTransition reports whether an order may move from one status to another.
// Orders advance one step at a time; any open order may be cancelled.
func CanTransition(from, to string) bool {
	if !isKnownStatus(from) || !isKnownStatus(to) || isTerminalStatus(from) {
		return false
	}
	if to == repository.OrderStatusCancelled {
		return true
	}
	return orderFlow[from] == to
}

// NextStatus returns the forward step from status, or "" for terminal states.
func NextStatus(status string) string {
	return orderFlow[status]
}
