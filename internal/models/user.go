package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a wholesale buyer. Accounts start unapproved after
// registration and must be approved before they can order.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Phone        string    `json:"phone" gorm:"uniqueIndex;type:varchar(20)" validate:"required,e164"`
	BusinessName string    `json:"business_name" gorm:"type:varchar(200)" validate:"omitempty,min=3,max=200"`
	Email        string    `json:"email" gorm:"type:varchar(255)" validate:"omitempty,email"`
	Address      string    `json:"address" validate:"omitempty,max=500"`
	GstinPan     string    `json:"gstin_pan" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	Approved     bool      `json:"approved"`
	OTPHash      string    `json:"-" gorm:"type:varchar(255)"` // No json tag value for security
	OTPExpiresAt time.Time `json:"-"`
	gorm.Model             // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
