package solver

import "github.com/ducvu/wasteflow-backend/pkg/types"

// Profile selects the routing model the solver applies to a sub-problem.
type Profile string

const (
	ProfileDrivingCar Profile = "driving-car"
	ProfileDrivingHGV Profile = "driving-hgv"
)

func (p Profile) String() string {
	return string(p)
}

// Vehicle describes one vehicle offered to the solver. Location is the start
// point: the current position for vehicles mid-dispatch, otherwise the depot.
type Vehicle struct {
	ID       string     `json:"id"`
	DepotID  string     `json:"depotId,omitempty"`
	Location [2]float64 `json:"location"`
	Capacity float64    `json:"capacity"`
	Profile  Profile    `json:"profile"`
}

// Job is one pickup stop the solver may place on a route.
type Job struct {
	ID       string     `json:"id"`
	Location [2]float64 `json:"location"`
	Demand   float64    `json:"demand"`
	Status   string     `json:"status,omitempty"`
}

// Route carries an ordered stop plan. On requests it holds the committed steps
// of in-progress routes (fixed prefixes); on responses it is the solved plan.
type Route struct {
	VehicleID string         `json:"vehicleId"`
	Steps     []Job          `json:"steps"`
	Distance  float64        `json:"distance,omitempty"`
	Duration  float64        `json:"duration,omitempty"`
	Geometry  types.Geometry `json:"geometry,omitempty"`
}

// Request is the wire payload for one solver call. Category never goes over
// the wire; it only labels metrics and logs for the sub-problem.
type Request struct {
	Vehicles []Vehicle `json:"vehicles"`
	Jobs     []Job     `json:"jobs"`
	Routes   []Route   `json:"routes,omitempty"`
	Profile  Profile   `json:"profile"`
	Category string    `json:"-"`
}

// Response is the solver's wire reply.
type Response struct {
	Routes     []Route `json:"routes"`
	Unassigned []Job   `json:"unassigned"`
	Error      *string `json:"error"`
}

// Result is the validated outcome of one solver call.
type Result struct {
	Routes     []Route
	Unassigned []Job
}
