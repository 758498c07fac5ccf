package enums

import "fmt"

// VehicleStatus reflects whether a vehicle can take on route work.
type VehicleStatus string

const (
	VehicleStatusIdle   VehicleStatus = "idle"
	VehicleStatusActive VehicleStatus = "active"
	VehicleStatusRepair VehicleStatus = "repair"
)

var validVehicleStatuses = []VehicleStatus{
	VehicleStatusIdle,
	VehicleStatusActive,
	VehicleStatusRepair,
}

// String implements fmt.Stringer.
func (v VehicleStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VehicleStatus.
func (v VehicleStatus) IsValid() bool {
	for _, candidate := range validVehicleStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVehicleStatus converts raw input into a VehicleStatus.
func ParseVehicleStatus(value string) (VehicleStatus, error) {
	for _, candidate := range validVehicleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle status %q", value)
}
