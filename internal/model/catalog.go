package model

// Vehicle catalog reference tables. All are read-only from the
// application's perspective and filtered to active rows.

type VehicleMake struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Status string `json:"-" gorm:"type:varchar(20);not null;default:'active'"`
}

// VehicleModel belongs to a make; the catalog endpoint groups models by
// their make id.
type VehicleModel struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(100)"`
	MakeID uint   `json:"make_id" gorm:"index;not null"`
	Status string `json:"-" gorm:"type:varchar(20);not null;default:'active'"`
}

type VehicleBodyStyle struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(50)"`
	Status string `json:"-" gorm:"type:varchar(20);not null;default:'active'"`
}

type VehicleFuelType struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(50)"`
	Status string `json:"-" gorm:"type:varchar(20);not null;default:'active'"`
}

type VehicleTransmission struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(50)"`
	Status string `json:"-" gorm:"type:varchar(20);not null;default:'active'"`
}
