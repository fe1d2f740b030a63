package handlers

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"restaurant-pos/config"
	"restaurant-pos/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var dbSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := config.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestCreateStaffUserRejectsExistingUsername(t *testing.T) {
	db := newTestDB(t)

	first, err := CreateStaffUser(db, StaffUserInput{Username: "admin", Password: "secret123"})
	if err != nil {
		t.Fatalf("CreateStaffUser: %v", err)
	}
	if first.Role != models.RoleAdmin {
		t.Fatalf("default role = %q, want admin", first.Role)
	}

	_, err = CreateStaffUser(db, StaffUserInput{Username: " admin ", Password: "other-password", Role: models.RoleStaff})
	if !errors.Is(err, ErrStaffUserExists) {
		t.Fatalf("expected ErrStaffUserExists, got %v", err)
	}

	var stored models.AdminUser
	if err := db.Where("username = ?", "admin").First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Role != models.RoleAdmin {
		t.Fatalf("role overwritten to %q", stored.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")) != nil {
		t.Fatal("password overwritten")
	}
}

func TestSaveStaffUserReplacesAndRevokesTokens(t *testing.T) {
	db := newTestDB(t)

	user, err := SaveStaffUser(db, StaffUserInput{Username: "cashier", Password: "secret123", Role: models.RoleStaff})
	if err != nil {
		t.Fatalf("SaveStaffUser: %v", err)
	}
	token := models.LoginToken{Token: "issued", ExpirationTime: time.Now().Add(time.Hour), UserID: user.ID, Role: user.Role}
	if err := db.Create(&token).Error; err != nil {
		t.Fatal(err)
	}

	replaced, err := SaveStaffUser(db, StaffUserInput{Username: "cashier", Password: "new-secret", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("SaveStaffUser replace: %v", err)
	}
	if replaced.ID != user.ID || replaced.Role != models.RoleAdmin {
		t.Fatalf("unexpected replaced user %+v", replaced)
	}
	if bcrypt.CompareHashAndPassword([]byte(replaced.Password), []byte("new-secret")) != nil {
		t.Fatal("password not replaced")
	}

	var remaining int64
	if err := db.Model(&models.LoginToken{}).Where("user_id = ?", user.ID).Count(&remaining).Error; err != nil {
		t.Fatal(err)
	}
	if remaining != 0 {
		t.Fatalf("%d tokens survived the replacement", remaining)
	}
}

func TestSaveStaffUserValidation(t *testing.T) {
	db := newTestDB(t)

	if _, err := SaveStaffUser(db, StaffUserInput{Username: "ab", Password: "secret123"}); err == nil {
		t.Fatal("expected validation error for short username")
	}
	if _, err := SaveStaffUser(db, StaffUserInput{Username: "cook", Password: "secret123", Role: "chef"}); err == nil {
		t.Fatal("expected validation error for unknown role")
	}
}
