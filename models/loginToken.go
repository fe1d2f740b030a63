package models

import (
	"gorm.io/gorm"
	"time"
)

// LoginToken records an issued staff token; deleting the row revokes it.
type LoginToken struct {
	gorm.Model
	Token          string `gorm:"type:varchar(512);index"`
	ExpirationTime time.Time
	UserID         uint
	Role           string
}
