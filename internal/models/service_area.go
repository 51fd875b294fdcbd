package models

import "time"

// GeoPoint координата в градусах.
type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

const (
	AreaPolygon = "polygon"
	AreaCircle  = "circle"
)

// ServiceArea зона обслуживания: полигон или круг с радиусом в километрах.
type ServiceArea struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Kind      string     `json:"kind"` // polygon или circle
	Points    []GeoPoint `json:"points,omitempty"`
	Center    GeoPoint   `json:"center,omitempty"`
	RadiusKM  float64    `json:"radius_km,omitempty"`
	ZipCodes  []string   `json:"zip_codes,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
