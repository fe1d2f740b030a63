package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCooking   OrderStatus = "cooking"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status accepted on the wire.
var OrderStatuses = []OrderStatus{OrderPending, OrderCooking, OrderCompleted, OrderCancelled}

// ParseOrderStatus matches s case-sensitively against the known statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, status := range OrderStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is expected from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// ActiveOrderStatuses are the statuses that keep a table occupied.
var ActiveOrderStatuses = []OrderStatus{OrderPending, OrderCooking}

type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TableNumber int         `gorm:"not null;index" json:"table_number"`
	Notes       *string     `gorm:"type:text" json:"notes"`
	Total       int64       `gorm:"not null" json:"total"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
