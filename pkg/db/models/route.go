package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/pkg/enums"
	"github.com/ducvu/wasteflow-backend/pkg/types"
)

// Route is the ordered stop plan for one vehicle within one dispatch. A vehicle
// holds at most one route per dispatch; dynamic rounds update the row in place so
// clients watching the route id see an update, not a new object.
type Route struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DispatchID  uuid.UUID         `gorm:"column:dispatch_id;type:uuid;not null;uniqueIndex:idx_routes_dispatch_vehicle" json:"dispatch_id"`
	VehicleID   uuid.UUID         `gorm:"column:vehicle_id;type:uuid;not null;uniqueIndex:idx_routes_dispatch_vehicle" json:"vehicle_id"`
	Status      enums.RouteStatus `gorm:"column:status;type:text;not null;default:'in_progress'" json:"status"`
	Distance    float64           `gorm:"column:distance;not null;default:0" json:"distance"`
	Duration    float64           `gorm:"column:duration;not null;default:0" json:"duration"`
	Geometry    types.Geometry    `gorm:"column:geometry;type:jsonb" json:"geometry"`
	CompletedAt *time.Time        `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Orders      []Order           `gorm:"foreignKey:RouteID" json:"orders,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
