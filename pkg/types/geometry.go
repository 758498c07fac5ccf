package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Geometry holds the GeoJSON LineString returned by the routing engine for a route.
// Coordinates follow GeoJSON order: [lon, lat].
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// IsZero reports whether no geometry was set.
func (g Geometry) IsZero() bool {
	return g.Type == "" && len(g.Coordinates) == 0
}

// Value serializes the geometry as JSON for a jsonb column.
func (g Geometry) Value() (driver.Value, error) {
	if g.IsZero() {
		return nil, nil
	}
	return json.Marshal(g)
}

// Scan accepts the jsonb bytes returned by Postgres (or text from sqlite).
func (g *Geometry) Scan(value interface{}) error {
	if value == nil {
		*g = Geometry{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	default:
		return fmt.Errorf("geometry: unsupported scan type %T", value)
	}
}
