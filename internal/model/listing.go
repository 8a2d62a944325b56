package model

import (
	"time"

	"gorm.io/gorm"
)

const ListingStatusActive = "active"

// VehicleListing is a marketplace entry. Read-only through this API;
// only active listings are surfaced. The images column holds a JSON
// array of URLs as text and is decoded before leaving the service.
type VehicleListing struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Price          float64        `json:"price"`
	Mileage        int            `json:"mileage"`
	Images         string         `json:"-" gorm:"type:text"`
	MakeID         uint           `json:"make_id"`
	ModelID        uint           `json:"model_id"`
	Year           int            `json:"year"`
	LocationCityID uint           `json:"location_city_id" gorm:"index"`
	Status         string         `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
