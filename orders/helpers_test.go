package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"restaurant-pos/config"
	"restaurant-pos/events"
	"restaurant-pos/models"

	"gorm.io/gorm"
)

var dbSeq int64

// newTestDB opens a private in-memory sqlite database with ten tables and a small menu.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&dbSeq, 1))
	db, err := config.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := config.SeedTables(db, 10); err != nil {
		t.Fatalf("seed tables: %v", err)
	}
	menu := []models.MenuItem{
		{ID: 1, Name: "Nasi Goreng", Description: "Fried rice", Price: 15000, IsAvailable: true},
		{ID: 2, Name: "Es Teh", Description: "Iced tea", Price: 5000, IsAvailable: true},
		{ID: 3, Name: "Sate Ayam", Description: "Chicken satay", Price: 20000, IsAvailable: true},
	}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) recorded() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func tableStatus(t *testing.T, db *gorm.DB, number int) models.TableStatus {
	t.Helper()
	var table models.RestaurantTable
	if err := db.Where("table_number = ?", number).First(&table).Error; err != nil {
		t.Fatalf("load table %d: %v", number, err)
	}
	return table.Status
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func submit(t *testing.T, svc *Service, table int, items ...ItemInput) *models.Order {
	t.Helper()
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	order, err := svc.SubmitOrder(context.Background(), SubmitRequest{TableNumber: table, Items: items, Total: total})
	if err != nil {
		t.Fatalf("SubmitOrder(table %d): %v", table, err)
	}
	return order
}
