package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// Depot is a vehicle home base. Depots are referenced, never owned: deleting a
// depot with assigned vehicles is refused at the service layer.
type Depot struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string              `gorm:"column:name;type:text;not null" json:"name"`
	Latitude  float64             `gorm:"column:latitude;not null" json:"latitude"`
	Longitude float64             `gorm:"column:longitude;not null" json:"longitude"`
	Address   string              `gorm:"column:address;type:text" json:"address"`
	Category  enums.WasteCategory `gorm:"column:category;type:text;not null" json:"category"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
