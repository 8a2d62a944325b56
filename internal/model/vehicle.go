package model

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle is a car registered by an owner. The owner is taken from the
// session at creation time and never changes afterwards. Catalog foreign
// keys are stored as provided; no existence check is performed against
// the reference tables.
type Vehicle struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	OwnerID            uint           `json:"owner_id" gorm:"index;not null"`
	MakeID             uint           `json:"make_id"`
	ModelID            uint           `json:"model_id"`
	Year               int            `json:"year"`
	BodyStyleID        uint           `json:"body_style_id"`
	FuelTypeID         uint           `json:"fuel_type_id"`
	TransmissionID     uint           `json:"transmission_id"`
	RegistrationNumber string         `json:"registration_number" gorm:"type:varchar(50)"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}
