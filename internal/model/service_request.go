package model

import (
	"time"

	"gorm.io/gorm"
)

const ServiceRequestStatusCompleted = "completed"

type ServiceCategory struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(100)"`
	Status string `json:"-" gorm:"type:varchar(20);not null;default:'active'"`
}

// ServiceRequest records work requested for a vehicle. Only completed
// requests are surfaced as service history.
type ServiceRequest struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	VehicleID          uint           `json:"vehicle_id" gorm:"index;not null"`
	ServiceCategoryID  uint           `json:"service_category_id"`
	PreferredDate      time.Time      `json:"preferred_date"`
	ServiceDescription string         `json:"service_description" gorm:"type:text"`
	ActualCost         float64        `json:"actual_cost"`
	Status             string         `json:"status" gorm:"type:varchar(20);not null"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}
