package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PointType is the only accepted geometry discriminator.
const PointType = "Point"

// Point is a GeoJSON-style point persisted as JSONB. Coordinates are
// ordered [longitude, latitude] and always hold exactly two entries.
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPoint builds a point from a longitude/latitude pair.
func NewPoint(lng, lat float64) Point {
	return Point{Type: PointType, Coordinates: [2]float64{lng, lat}}
}

// Lng returns the longitude component.
func (p Point) Lng() float64 {
	return p.Coordinates[0]
}

// Lat returns the latitude component.
func (p Point) Lat() float64 {
	return p.Coordinates[1]
}

// Validate checks the discriminator. The coordinate arity is fixed by
// the type itself.
func (p Point) Validate() error {
	if p.Type != PointType {
		return fmt.Errorf("point: unsupported geometry type %q", p.Type)
	}
	return nil
}

// Value marshals the point into JSON for the store.
func (p Point) Value() (driver.Value, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	buf, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the point.
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		*p = Point{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("point: unsupported scan type %T", value)
	}

	var decoded struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	if decoded.Type != PointType {
		return fmt.Errorf("point: unsupported geometry type %q", decoded.Type)
	}
	if len(decoded.Coordinates) != 2 {
		return fmt.Errorf("point: expected 2 coordinates, got %d", len(decoded.Coordinates))
	}

	p.Type = decoded.Type
	p.Coordinates = [2]float64{decoded.Coordinates[0], decoded.Coordinates[1]}
	return nil
}
