package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// Dispatch groups the routes produced by one or more solving rounds. A partial
// unique index guarantees at most one in_progress dispatch system-wide.
type Dispatch struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Status      enums.DispatchStatus `gorm:"column:status;type:text;not null;default:'in_progress'" json:"status"`
	StartedAt   time.Time            `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt *time.Time           `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Routes      []Route              `gorm:"foreignKey:DispatchID" json:"routes,omitempty"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
