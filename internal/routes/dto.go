package routes

import (
	"time"

	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/internal/orders"
	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
	"github.com/ducvu/wasteflow-backend/pkg/types"
)

// RouteDTO exposes a vehicle route and its ordered stops.
type RouteDTO struct {
	ID          uuid.UUID         `json:"id"`
	DispatchID  uuid.UUID         `json:"dispatch_id"`
	VehicleID   uuid.UUID         `json:"vehicle_id"`
	Status      enums.RouteStatus `json:"status"`
	Distance    float64           `json:"distance"`
	Duration    float64           `json:"duration"`
	Geometry    types.Geometry    `json:"geometry"`
	Orders      []orders.OrderDTO `json:"orders"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// FromModel maps the persisted route into a DTO, carrying its stop list in
// sequence order when preloaded.
func FromModel(m *models.Route) *RouteDTO {
	if m == nil {
		return nil
	}
	stops := make([]orders.OrderDTO, 0, len(m.Orders))
	for i := range m.Orders {
		stops = append(stops, *orders.FromModel(&m.Orders[i]))
	}
	return &RouteDTO{
		ID:          m.ID,
		DispatchID:  m.DispatchID,
		VehicleID:   m.VehicleID,
		Status:      m.Status,
		Distance:    m.Distance,
		Duration:    m.Duration,
		Geometry:    m.Geometry,
		Orders:      stops,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
