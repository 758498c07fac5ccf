package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// Vehicle is a fleet unit based at a depot. Current position and load are fed by
// the telemetry worker; the dispatch engine only reads them.
type Vehicle struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DepotID          uuid.UUID           `gorm:"column:depot_id;type:uuid;not null" json:"depot_id"`
	DriverID         *uuid.UUID          `gorm:"column:driver_id;type:uuid" json:"driver_id,omitempty"`
	LicensePlate     string              `gorm:"column:license_plate;type:text;not null;uniqueIndex" json:"license_plate"`
	Capacity         decimal.Decimal     `gorm:"column:capacity;type:numeric(10,2);not null" json:"capacity"`
	Type             enums.VehicleType   `gorm:"column:type;type:text;not null" json:"type"`
	Category         enums.WasteCategory `gorm:"column:category;type:text;not null" json:"category"`
	CurrentLatitude  float64             `gorm:"column:current_latitude" json:"current_latitude"`
	CurrentLongitude float64             `gorm:"column:current_longitude" json:"current_longitude"`
	CurrentLoad      float64             `gorm:"column:current_load;not null;default:0" json:"current_load"`
	Status           enums.VehicleStatus `gorm:"column:status;type:text;not null;default:'idle'" json:"status"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
