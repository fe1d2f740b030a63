package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant-pos/models"

	"gorm.io/gorm"
)

type ListFilter struct {
	Status      string
	TableNumber *int
}

// OrderSummary is an order header with its items flattened, e.g. "2x Fried Rice, 1x Iced Tea".
type OrderSummary struct {
	models.Order
	ItemsSummary string `json:"items_summary"`
}

// OrderLine is an order item joined with the menu item it refers to.
type OrderLine struct {
	ID          uint   `json:"id"`
	OrderID     uint   `json:"order_id"`
	MenuItemID  uint   `json:"menu_item_id"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type OrderDetail struct {
	models.Order
	Items []OrderLine `json:"items"`
}

func (s *Service) ListOrders(ctx context.Context, filter ListFilter) ([]OrderSummary, error) {
	var status models.OrderStatus
	if filter.Status != "" {
		parsed, ok := models.ParseOrderStatus(filter.Status)
		if !ok {
			return nil, newValidationError("status", "must be one of pending, cooking, completed, cancelled")
		}
		status = parsed
	}
	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Order{})
		if status != "" {
			query = query.Where("status = ?", status)
		}
		if filter.TableNumber != nil {
			query = query.Where("table_number = ?", *filter.TableNumber)
		}
		return query
	}

	var orders []models.Order
	if err := filtered().Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	summaries := make([]OrderSummary, 0, len(orders))
	if len(orders) == 0 {
		return summaries, nil
	}

	// Items are matched through a subquery so the bound parameters stay
	// constant however many orders the filter selects.
	lines, err := s.loadLines(ctx, filtered().Select("id"))
	if err != nil {
		return nil, err
	}

	parts := make(map[uint][]string, len(orders))
	for _, line := range lines {
		parts[line.OrderID] = append(parts[line.OrderID], formatLine(line))
	}
	for _, o := range orders {
		summaries = append(summaries, OrderSummary{
			Order:        o,
			ItemsSummary: strings.Join(parts[o.ID], ", "),
		})
	}
	return summaries, nil
}

func formatLine(line OrderLine) string {
	name := line.Name
	if name == "" {
		name = fmt.Sprintf("item #%d", line.MenuItemID)
	}
	return fmt.Sprintf("%dx %s", line.Quantity, name)
}

func (s *Service) GetOrder(ctx context.Context, orderID uint) (*OrderDetail, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}

	lines, err := s.loadLines(ctx, []uint{order.ID})
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: order, Items: lines}, nil
}

// loadLines returns items in insertion order; a deleted menu item yields empty name and description.
// orderIDs is either a slice of ids or an id subquery.
func (s *Service) loadLines(ctx context.Context, orderIDs interface{}) ([]OrderLine, error) {
	lines := []OrderLine{}
	err := s.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.id, order_items.order_id, order_items.menu_item_id, order_items.quantity, order_items.price, " +
			"COALESCE(menu_items.name, '') AS name, COALESCE(menu_items.description, '') AS description").
		Joins("LEFT JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Where("order_items.order_id IN (?)", orderIDs).
		Order("order_items.id").
		Scan(&lines).
		Error
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	return lines, nil
}
