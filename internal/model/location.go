package model

// Status values shared by the reference tables (countries, cities and
// the vehicle catalog). The application only ever reads active rows.
const (
	ReferenceStatusActive   = "active"
	ReferenceStatusInactive = "inactive"
)

// Country is read-only reference data used for registration dropdowns.
type Country struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Status string `json:"-" gorm:"type:varchar(20);not null;default:'active'"`
}

// City belongs to a country; the locations endpoint groups cities by
// their country id.
type City struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"type:varchar(100)"`
	CountryID uint   `json:"country_id" gorm:"index;not null"`
	Status    string `json:"-" gorm:"type:varchar(20);not null;default:'active'"`
}
