package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/internal/routes"
	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// DispatchDTO exposes one dispatch and its route graph.
type DispatchDTO struct {
	ID          uuid.UUID            `json:"id"`
	Status      enums.DispatchStatus `json:"status"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	Routes      []routes.RouteDTO    `json:"routes,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// FromModel maps the persisted dispatch into a DTO.
func FromModel(m *models.Dispatch) *DispatchDTO {
	if m == nil {
		return nil
	}
	dto := &DispatchDTO{
		ID:          m.ID,
		Status:      m.Status,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for i := range m.Routes {
		dto.Routes = append(dto.Routes, *routes.FromModel(&m.Routes[i]))
	}
	return dto
}
