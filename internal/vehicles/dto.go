package vehicles

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// VehicleDTO exposes vehicle data in API responses.
type VehicleDTO struct {
	ID               uuid.UUID           `json:"id"`
	DepotID          uuid.UUID           `json:"depot_id"`
	DriverID         *uuid.UUID          `json:"driver_id,omitempty"`
	LicensePlate     string              `json:"license_plate"`
	Capacity         decimal.Decimal     `json:"capacity"`
	Type             enums.VehicleType   `json:"type"`
	Category         enums.WasteCategory `json:"category"`
	CurrentLatitude  float64             `json:"current_latitude"`
	CurrentLongitude float64             `json:"current_longitude"`
	CurrentLoad      float64             `json:"current_load"`
	Status           enums.VehicleStatus `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// CreateVehicleDTO holds creation-time data for a new vehicle. Position is
// seeded from the depot location, never supplied by the caller.
type CreateVehicleDTO struct {
	DepotID      uuid.UUID
	DriverID     *uuid.UUID
	LicensePlate string
	Capacity     decimal.Decimal
	Type         enums.VehicleType
	Category     enums.WasteCategory
}

// UpdateVehicleInput captures the mutable vehicle fields.
type UpdateVehicleInput struct {
	DriverID *uuid.UUID
	Capacity *decimal.Decimal
	Status   *enums.VehicleStatus
}

// FromModel maps the persisted vehicle into a DTO.
func FromModel(m *models.Vehicle) *VehicleDTO {
	if m == nil {
		return nil
	}
	return &VehicleDTO{
		ID:               m.ID,
		DepotID:          m.DepotID,
		DriverID:         m.DriverID,
		LicensePlate:     m.LicensePlate,
		Capacity:         m.Capacity,
		Type:             m.Type,
		Category:         m.Category,
		CurrentLatitude:  m.CurrentLatitude,
		CurrentLongitude: m.CurrentLongitude,
		CurrentLoad:      m.CurrentLoad,
		Status:           m.Status,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ToModel prepares the GORM model, seeding the position to the depot location.
func (c CreateVehicleDTO) ToModel(depot *models.Depot) *models.Vehicle {
	vehicle := &models.Vehicle{
		ID:           uuid.New(),
		DepotID:      c.DepotID,
		DriverID:     c.DriverID,
		LicensePlate: c.LicensePlate,
		Capacity:     c.Capacity,
		Type:         c.Type,
		Category:     c.Category,
		Status:       enums.VehicleStatusIdle,
	}
	if depot != nil {
		vehicle.CurrentLatitude = depot.Latitude
		vehicle.CurrentLongitude = depot.Longitude
	}
	return vehicle
}
