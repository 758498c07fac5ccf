package dispatch

import (
	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/internal/notifications"
	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// roundAccumulator buffers every mutation produced while a round plans, so the
// commit step can write them as one unit and notifications only go out after a
// successful commit. Accumulators are created per round and never shared.
type roundAccumulator struct {
	createdRoutes []*models.Route
	updatedRoutes []*models.Route
	orders        map[uuid.UUID]*models.Order
	vehicleStatus map[uuid.UUID]enums.VehicleStatus
	notices       []notifications.Batch
}

func newRoundAccumulator() *roundAccumulator {
	return &roundAccumulator{
		orders:        make(map[uuid.UUID]*models.Order),
		vehicleStatus: make(map[uuid.UUID]enums.VehicleStatus),
	}
}

func (a *roundAccumulator) trackOrder(order *models.Order) {
	a.orders[order.ID] = order
}

func (a *roundAccumulator) activateVehicle(id uuid.UUID) {
	a.vehicleStatus[id] = enums.VehicleStatusActive
}

func (a *roundAccumulator) notify(batch notifications.Batch) {
	if len(batch.RecipientIDs) == 0 {
		return
	}
	a.notices = append(a.notices, batch)
}

// empty reports whether the round produced no route work at all.
func (a *roundAccumulator) empty() bool {
	return len(a.createdRoutes) == 0 && len(a.updatedRoutes) == 0
}

// RoundSummary reports what one orchestration round did.
type RoundSummary struct {
	Sequence          int64     `json:"sequence"`
	DispatchID        uuid.UUID `json:"dispatch_id,omitempty"`
	Dynamic           bool      `json:"dynamic"`
	NoOp              bool      `json:"no_op"`
	RoutesCreated     int       `json:"routes_created"`
	RoutesUpdated     int       `json:"routes_updated"`
	OrdersAssigned    int       `json:"orders_assigned"`
	OrdersReassigned  int       `json:"orders_reassigned"`
	SkippedCategories []string  `json:"skipped_categories,omitempty"`
	FailedCategories  []string  `json:"failed_categories,omitempty"`
}
