package dispatch

import (
	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/internal/notifications"
	"github.com/ducvu/wasteflow-backend/internal/solver"
	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
)

// reconciler turns solver results into route and order mutations. Whether a
// result extends or creates a route is decided by the vehicle's state observed
// before the round started, never by what the solver happened to return.
type reconciler struct {
	dispatch *models.Dispatch
	existing map[uuid.UUID]*models.Route
	orders   map[uuid.UUID]*models.Order
	vehicles map[uuid.UUID]*models.Vehicle
	acc      *roundAccumulator

	assigned   int
	reassigned int
}

func newReconciler(dispatch *models.Dispatch, existing map[uuid.UUID]*models.Route, orders map[uuid.UUID]*models.Order, vehicles map[uuid.UUID]*models.Vehicle, acc *roundAccumulator) *reconciler {
	return &reconciler{
		dispatch: dispatch,
		existing: existing,
		orders:   orders,
		vehicles: vehicles,
		acc:      acc,
	}
}

// apply folds one solver result into the round accumulator. Nothing is
// persisted here; the orchestrator commits the accumulator atomically.
func (r *reconciler) apply(result *solver.Result) error {
	for _, planned := range result.Routes {
		if len(planned.Steps) == 0 {
			continue
		}

		vehicleID, err := uuid.Parse(planned.VehicleID)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeSolverFailure, "solver returned malformed vehicle id").
				WithDetails(map[string]any{"vehicle_id": planned.VehicleID})
		}
		vehicle, ok := r.vehicles[vehicleID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeSolverFailure, "solver returned unknown vehicle").
				WithDetails(map[string]any{"vehicle_id": planned.VehicleID})
		}

		if route, ok := r.existing[vehicleID]; ok {
			if err := r.extendRoute(route, planned); err != nil {
				return err
			}
			continue
		}
		if err := r.createRoute(vehicle, planned); err != nil {
			return err
		}
	}
	return nil
}

// extendRoute replaces the stop list of a live route in place. The route keeps
// its identity so clients watching it by id see an update, not a new object.
func (r *reconciler) extendRoute(route *models.Route, planned solver.Route) error {
	kept := make(map[uuid.UUID]struct{}, len(planned.Steps))
	for _, step := range planned.Steps {
		if id, err := uuid.Parse(step.ID); err == nil {
			kept[id] = struct{}{}
		}
	}
	for i := range route.Orders {
		prior := &route.Orders[i]
		if prior.Status != enums.OrderStatusInProgress {
			continue
		}
		if _, ok := kept[prior.ID]; ok {
			continue
		}
		// pulled out of the rebuilt plan: back to the pool next round
		tracked := r.lookupOrder(prior.ID)
		if tracked == nil {
			tracked = prior
		}
		tracked.Status = enums.OrderStatusReassigned
		tracked.RouteID = nil
		tracked.SequenceIndex = nil
		r.acc.trackOrder(tracked)
		r.reassigned++
	}

	if err := r.attachStops(route, planned.Steps); err != nil {
		return err
	}
	route.Distance = planned.Distance
	route.Duration = planned.Duration
	route.Geometry = planned.Geometry
	r.acc.updatedRoutes = append(r.acc.updatedRoutes, route)
	return nil
}

// createRoute allocates a fresh route for a vehicle entering the dispatch and
// flips the vehicle active alongside it.
func (r *reconciler) createRoute(vehicle *models.Vehicle, planned solver.Route) error {
	route := &models.Route{
		ID:         uuid.New(),
		DispatchID: r.dispatch.ID,
		VehicleID:  vehicle.ID,
		Status:     enums.RouteStatusInProgress,
		Distance:   planned.Distance,
		Duration:   planned.Duration,
		Geometry:   planned.Geometry,
	}
	if err := r.attachStops(route, planned.Steps); err != nil {
		return err
	}

	r.acc.createdRoutes = append(r.acc.createdRoutes, route)
	r.acc.activateVehicle(vehicle.ID)
	r.existing[vehicle.ID] = route

	if vehicle.DriverID != nil {
		r.acc.notify(notifications.Batch{
			Type:         enums.NotificationTypeRoute,
			TargetID:     route.ID,
			Message:      "new route assigned",
			RecipientIDs: []uuid.UUID{*vehicle.DriverID},
		})
	}
	return nil
}

// attachStops pins every planned stop to the route with its sequence position.
func (r *reconciler) attachStops(route *models.Route, steps []solver.Job) error {
	for i, step := range steps {
		orderID, err := uuid.Parse(step.ID)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeSolverFailure, "solver returned malformed job id").
				WithDetails(map[string]any{"job_id": step.ID})
		}
		order := r.lookupOrder(orderID)
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeSolverFailure, "solver returned unknown job").
				WithDetails(map[string]any{"job_id": step.ID})
		}

		fresh := order.Status.Routable()
		seq := i
		order.Status = enums.OrderStatusInProgress
		order.RouteID = &route.ID
		order.SequenceIndex = &seq
		r.acc.trackOrder(order)

		if fresh {
			r.assigned++
			r.acc.notify(notifications.Batch{
				Type:         enums.NotificationTypeOrder,
				TargetID:     order.ID,
				Message:      "pickup scheduled",
				RecipientIDs: []uuid.UUID{order.CustomerID},
			})
		}
	}
	return nil
}

func (r *reconciler) lookupOrder(id uuid.UUID) *models.Order {
	if order, ok := r.orders[id]; ok {
		return order
	}
	return nil
}
