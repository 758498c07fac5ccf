package depots

import (
	"time"

	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// DepotDTO exposes depot data in API responses.
type DepotDTO struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
	Address   string              `json:"address,omitempty"`
	Category  enums.WasteCategory `json:"category"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// CreateDepotDTO holds creation-time data for a new depot.
type CreateDepotDTO struct {
	Name      string
	Latitude  float64
	Longitude float64
	Address   string
	Category  enums.WasteCategory
}

// UpdateDepotInput captures the mutable depot fields.
type UpdateDepotInput struct {
	Name      *string
	Latitude  *float64
	Longitude *float64
	Address   *string
}

// FromModel maps the persisted depot into a DTO.
func FromModel(m *models.Depot) *DepotDTO {
	if m == nil {
		return nil
	}
	return &DepotDTO{
		ID:        m.ID,
		Name:      m.Name,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Address:   m.Address,
		Category:  m.Category,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateDepotDTO) ToModel() *models.Depot {
	return &models.Depot{
		ID:        uuid.New(),
		Name:      c.Name,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Address:   c.Address,
		Category:  c.Category,
	}
}
