package model

import (
	"time"

	"gorm.io/gorm"
)

// User account statuses. Accounts start out pending and become active
// once the phone number is verified.
const (
	UserStatusPending   = "pending"
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User types (roles). Only car owners self-register through the public API.
const (
	UserTypeCarOwner = "car_owner"
)

// User represents a registered account stored in the database.
// The phone number is the login identifier; uniqueness is enforced by
// the database index and surfaced as a duplicated-key error on insert.
type User struct {
	ID                       uint           `json:"id" gorm:"primaryKey"`
	Phone                    string         `json:"phone" gorm:"type:varchar(20);uniqueIndex"`
	CountryID                uint           `json:"country_id" gorm:"index"`
	CityID                   uint           `json:"city_id" gorm:"index"`
	PasswordHash             string         `json:"-" gorm:"type:varchar(255)"`
	UserType                 string         `json:"user_type" gorm:"type:varchar(20);not null;default:'car_owner'"`
	Status                   string         `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	PhoneVerified            bool           `json:"phone_verified" gorm:"default:false"`
	PhoneVerificationCode    *string        `json:"-" gorm:"type:varchar(6)"`
	PhoneVerificationExpires *time.Time     `json:"-"`
	LastLogin                *time.Time     `json:"last_login,omitempty"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
	DeletedAt                gorm.DeletedAt `json:"-" gorm:"index"`
}
