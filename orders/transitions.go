package orders

import "restaurant-pos/models"

// allowedTransitions is the forward-only graph enforced when strict transitions are enabled.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending: {models.OrderCooking, models.OrderCancelled},
	models.OrderCooking: {models.OrderCompleted, models.OrderCancelled},
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
