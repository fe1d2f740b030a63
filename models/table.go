package models

import "time"

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
)

func ParseTableStatus(s string) (TableStatus, bool) {
	switch TableStatus(s) {
	case TableAvailable, TableOccupied:
		return TableStatus(s), true
	}
	return "", false
}

type RestaurantTable struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TableNumber int         `gorm:"uniqueIndex;not null" json:"table_number"`
	Status      TableStatus `gorm:"type:varchar(20);not null" json:"status"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// All lists every model managed by AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&AdminUser{},
		&LoginToken{},
		&Category{},
		&MenuItem{},
		&RestaurantTable{},
		&Order{},
		&OrderItem{},
	}
}
