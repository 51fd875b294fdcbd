package geo

import (
	"math"
	"strings"

	"cleanhive/internal/models"
)

const earthRadiusKM = 6371.0

// DistanceKM returns the haversine distance between two points.
func DistanceKM(a, b models.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PointInPolygon uses the ray casting rule; polygons with fewer than three
// vertices contain nothing.
func PointInPolygon(p models.GeoPoint, polygon []models.GeoPoint) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		if (pi.Lng > p.Lng) != (pj.Lng > p.Lng) &&
			p.Lat < (pj.Lat-pi.Lat)*(p.Lng-pi.Lng)/(pj.Lng-pi.Lng)+pi.Lat {
			inside = !inside
		}
		j = i
	}
	return inside
}

// AreaContains reports whether the area covers the point.
func AreaContains(area *models.ServiceArea, p models.GeoPoint) bool {
	switch area.Kind {
	case models.AreaPolygon:
		return PointInPolygon(p, area.Points)
	case models.AreaCircle:
		return DistanceKM(area.Center, p) <= area.RadiusKM
	default:
		return false
	}
}

// AreaCoversZip matches the booking zip code against the area list.
// A zip entry ending in * matches by prefix ("787*" covers "78701").
func AreaCoversZip(area *models.ServiceArea, zip string) bool {
	for _, z := range area.ZipCodes {
		if strings.HasSuffix(z, "*") {
			if strings.HasPrefix(zip, strings.TrimSuffix(z, "*")) {
				return true
			}
			continue
		}
		if z == zip {
			return true
		}
	}
	return false
}
