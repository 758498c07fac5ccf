package dispatch

import (
	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/internal/solver"
	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// tier is one fleet-class pass within a category. Tiers run strictly in table
// order: only jobs the earlier tier left unassigned reach the next one.
type tier struct {
	VehicleType enums.VehicleType
	Profile     solver.Profile
}

// tierTable maps vehicle classes to routing profiles, lightest fleet first.
// Adding a vehicle class means adding a row here, not touching control flow.
var tierTable = []tier{
	{VehicleType: enums.VehicleTypeThreeWheeler, Profile: solver.ProfileDrivingCar},
	{VehicleType: enums.VehicleTypeCompactorTruck, Profile: solver.ProfileDrivingHGV},
}

// subProblem is one self-contained solver call: one category, one tier.
type subProblem struct {
	Category enums.WasteCategory
	Tier     tier
	Vehicles []models.Vehicle
	Orders   []models.Order
}

// Empty reports whether the sub-problem has nothing to solve. Empty
// sub-problems skip the solver call entirely.
func (s subProblem) Empty() bool {
	return len(s.Vehicles) == 0 || len(s.Orders) == 0
}

// groupOrdersByCategory buckets pool orders per waste category, preserving the
// oldest-first order of the input slice.
func groupOrdersByCategory(pool []models.Order) map[enums.WasteCategory][]models.Order {
	grouped := make(map[enums.WasteCategory][]models.Order)
	for _, order := range pool {
		grouped[order.Category] = append(grouped[order.Category], order)
	}
	return grouped
}

// groupVehiclesByCategory buckets the dispatchable fleet per certified category.
func groupVehiclesByCategory(fleet []models.Vehicle) map[enums.WasteCategory][]models.Vehicle {
	grouped := make(map[enums.WasteCategory][]models.Vehicle)
	for _, vehicle := range fleet {
		grouped[vehicle.Category] = append(grouped[vehicle.Category], vehicle)
	}
	return grouped
}

func vehiclesOfType(fleet []models.Vehicle, vehicleType enums.VehicleType) []models.Vehicle {
	var out []models.Vehicle
	for _, vehicle := range fleet {
		if vehicle.Type == vehicleType {
			out = append(out, vehicle)
		}
	}
	return out
}

// buildRequest assembles the wire payload for one sub-problem. Vehicles start
// from their live position when they already drive a route this dispatch,
// otherwise from their depot. In-progress routes ride along as fixed prefixes:
// their open stops join the job list marked in_progress so the solver extends
// rather than rediscovers them.
func buildRequest(sub subProblem, depots map[uuid.UUID]models.Depot, existing map[uuid.UUID]*models.Route) solver.Request {
	req := solver.Request{
		Profile:  sub.Tier.Profile,
		Category: sub.Category.String(),
	}

	for _, vehicle := range sub.Vehicles {
		location := [2]float64{vehicle.CurrentLatitude, vehicle.CurrentLongitude}
		route, midDispatch := existing[vehicle.ID]
		if !midDispatch {
			if depot, ok := depots[vehicle.DepotID]; ok {
				location = [2]float64{depot.Latitude, depot.Longitude}
			}
		}

		req.Vehicles = append(req.Vehicles, solver.Vehicle{
			ID:       vehicle.ID.String(),
			DepotID:  vehicle.DepotID.String(),
			Location: location,
			Capacity: vehicle.Capacity.InexactFloat64(),
			Profile:  sub.Tier.Profile,
		})

		if midDispatch {
			steps := make([]solver.Job, 0, len(route.Orders))
			for _, order := range route.Orders {
				if order.Status != enums.OrderStatusInProgress {
					continue
				}
				job := orderToJob(order)
				job.Status = enums.OrderStatusInProgress.String()
				steps = append(steps, job)
				req.Jobs = append(req.Jobs, job)
			}
			req.Routes = append(req.Routes, solver.Route{
				VehicleID: vehicle.ID.String(),
				Steps:     steps,
				Distance:  route.Distance,
				Duration:  route.Duration,
				Geometry:  route.Geometry,
			})
		}
	}

	for _, order := range sub.Orders {
		req.Jobs = append(req.Jobs, orderToJob(order))
	}
	return req
}

func orderToJob(order models.Order) solver.Job {
	return solver.Job{
		ID:       order.ID.String(),
		Location: [2]float64{order.Latitude, order.Longitude},
		Demand:   order.Weight.InexactFloat64(),
	}
}

// leftoverOrders keeps the pool orders the solver reported unassigned, in their
// original oldest-first order. Unassigned in-progress stops never re-enter the
// pool here; they stay pinned to their route.
func leftoverOrders(pool []models.Order, unassigned []solver.Job) []models.Order {
	if len(unassigned) == 0 {
		return nil
	}
	ids := make(map[string]struct{}, len(unassigned))
	for _, job := range unassigned {
		ids[job.ID] = struct{}{}
	}
	var out []models.Order
	for _, order := range pool {
		if _, ok := ids[order.ID.String()]; ok {
			out = append(out, order)
		}
	}
	return out
}
