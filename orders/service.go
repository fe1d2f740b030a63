package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"restaurant-pos/events"
	"restaurant-pos/logger"
	"restaurant-pos/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options tighten the lifecycle beyond its permissive defaults.
type Options struct {
	// StrictTransitions rejects moves outside pending -> cooking -> completed
	// (cancellation allowed from pending and cooking).
	StrictTransitions bool
	// RejectOccupiedTables refuses a new order for a table that is already occupied.
	RejectOccupiedTables bool
}

// Service owns the order lifecycle and the table occupancy it drives.
type Service struct {
	db        *gorm.DB
	publisher events.Publisher
	logger    *logger.Logger
	opts      Options
}

func NewService(db *gorm.DB, publisher events.Publisher, log *logger.Logger, opts Options) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		db:        db,
		publisher: publisher,
		logger:    log,
		opts:      opts,
	}
}

// SubmitOrder stores the header, its items and the table flip in one transaction.
// The returned order does not carry items; use GetOrder for those.
func (s *Service) SubmitOrder(ctx context.Context, req SubmitRequest) (*models.Order, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	fail := func(err error) (*models.Order, error) {
		tx.Rollback()
		return nil, err
	}

	var table models.RestaurantTable
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("table_number = ?", req.TableNumber).
		First(&table).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(fmt.Errorf("%w: %d", ErrTableNotFound, req.TableNumber))
		}
		return fail(fmt.Errorf("lock table %d: %w", req.TableNumber, err))
	}
	if s.opts.RejectOccupiedTables && table.Status == models.TableOccupied {
		return fail(fmt.Errorf("%w: %d", ErrTableOccupied, req.TableNumber))
	}

	if err := checkMenuItems(tx, req.Items); err != nil {
		return fail(err)
	}

	order := models.Order{
		TableNumber: req.TableNumber,
		Notes:       req.Notes,
		Total:       req.Total,
		Status:      models.OrderPending,
	}
	if err := tx.Create(&order).Error; err != nil {
		return fail(fmt.Errorf("insert order: %w", err))
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, models.OrderItem{
			OrderID:    order.ID,
			MenuItemID: in.MenuItemID,
			Quantity:   in.Quantity,
			Price:      in.Price,
		})
	}
	if err := tx.Create(&items).Error; err != nil {
		return fail(fmt.Errorf("insert order items: %w", err))
	}

	update := tx.Model(&models.RestaurantTable{}).Where("table_number = ?", req.TableNumber)
	if s.opts.RejectOccupiedTables {
		update = update.Where("status = ?", models.TableAvailable)
	}
	result := update.Update("status", models.TableOccupied)
	if result.Error != nil {
		return fail(fmt.Errorf("occupy table %d: %w", req.TableNumber, result.Error))
	}
	if s.opts.RejectOccupiedTables && result.RowsAffected == 0 {
		return fail(fmt.Errorf("%w: %d", ErrTableOccupied, req.TableNumber))
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("commit order: %w", err)
	}

	s.logger.Info("order_created", logger.RequestIDFrom(ctx), "Order created",
		slog.Uint64("order_id", uint64(order.ID)),
		slog.Int("table_number", order.TableNumber),
		slog.Int("items", len(items)),
		slog.Int64("total", order.Total),
	)
	s.publish(ctx, events.Event{
		Type:        events.OrderCreated,
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		Status:      string(order.Status),
		Total:       order.Total,
		OccurredAt:  order.CreatedAt,
	})

	return &order, nil
}

func checkMenuItems(tx *gorm.DB, items []ItemInput) error {
	seen := make(map[uint]struct{}, len(items))
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.MenuItemID]; ok {
			continue
		}
		seen[item.MenuItemID] = struct{}{}
		ids = append(ids, item.MenuItemID)
	}

	var found []uint
	err := tx.Model(&models.MenuItem{}).Where("id IN ?", ids).Pluck("id", &found).Error
	if err != nil {
		return fmt.Errorf("look up menu items: %w", err)
	}
	if len(found) == len(ids) {
		return nil
	}

	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return fmt.Errorf("%w: %d", ErrMenuItemNotFound, id)
		}
	}
	return nil
}

// TransitionStatus writes the new status and, for terminal statuses, releases the
// table in the same transaction. The table stays occupied while another active
// order still points at it.
func (s *Service) TransitionStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, newValidationError("status", "must be one of pending, cooking, completed, cancelled")
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	fail := func(err error) (*models.Order, error) {
		tx.Rollback()
		return nil, err
	}

	var order models.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(fmt.Errorf("%w: %d", ErrOrderNotFound, orderID))
		}
		return fail(fmt.Errorf("load order %d: %w", orderID, err))
	}

	previous := order.Status
	if s.opts.StrictTransitions && !CanTransition(previous, next) {
		return fail(fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, previous, next))
	}

	if err := tx.Model(&order).Update("status", next).Error; err != nil {
		return fail(fmt.Errorf("update order %d status: %w", orderID, err))
	}
	order.Status = next

	released := false
	if next.IsTerminal() {
		// Table row is locked before the count, same order as SubmitOrder.
		var table models.RestaurantTable
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("table_number = ?", order.TableNumber).
			First(&table).
			Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(fmt.Errorf("lock table %d: %w", order.TableNumber, err))
		}

		var active int64
		err = tx.Model(&models.Order{}).
			Where("table_number = ? AND id <> ? AND status IN ?", order.TableNumber, order.ID, models.ActiveOrderStatuses).
			Count(&active).
			Error
		if err != nil {
			return fail(fmt.Errorf("count active orders for table %d: %w", order.TableNumber, err))
		}
		if active == 0 {
			err = tx.Model(&models.RestaurantTable{}).
				Where("table_number = ?", order.TableNumber).
				Update("status", models.TableAvailable).
				Error
			if err != nil {
				return fail(fmt.Errorf("release table %d: %w", order.TableNumber, err))
			}
			released = true
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("commit status change: %w", err)
	}

	s.logger.Info("order_status_changed", logger.RequestIDFrom(ctx), "Order status updated",
		slog.Uint64("order_id", uint64(order.ID)),
		slog.String("from", string(previous)),
		slog.String("to", string(next)),
		slog.Bool("table_released", released),
	)
	s.publish(ctx, events.Event{
		Type:           events.OrderStatusChanged,
		OrderID:        order.ID,
		TableNumber:    order.TableNumber,
		Status:         string(next),
		PreviousStatus: string(previous),
		Total:          order.Total,
		OccurredAt:     time.Now().UTC(),
	})

	return &order, nil
}

// publish never fails the caller: the order is already committed.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("event_publish_failed", logger.RequestIDFrom(ctx), "Failed to publish order event", err,
			slog.String("type", event.Type),
			slog.Uint64("order_id", uint64(event.OrderID)),
		)
	}
}
