package geo

import (
	"testing"

	"cleanhive/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKM(t *testing.T) {
	austin := models.GeoPoint{Lat: 30.2672, Lng: -97.7431}
	dallas := models.GeoPoint{Lat: 32.7767, Lng: -96.7970}

	d := DistanceKM(austin, dallas)
	// ~293 km by road network references
	assert.InDelta(t, 293, d, 10)

	assert.InDelta(t, 0, DistanceKM(austin, austin), 0.001)
}

func TestPointInPolygon(t *testing.T) {
	square := []models.GeoPoint{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 10},
		{Lat: 10, Lng: 10},
		{Lat: 10, Lng: 0},
	}

	assert.True(t, PointInPolygon(models.GeoPoint{Lat: 5, Lng: 5}, square))
	assert.False(t, PointInPolygon(models.GeoPoint{Lat: 15, Lng: 5}, square))
	assert.False(t, PointInPolygon(models.GeoPoint{Lat: 5, Lng: -1}, square))

	// degenerate polygon
	assert.False(t, PointInPolygon(models.GeoPoint{Lat: 0, Lng: 0}, square[:2]))
}

func TestAreaContains(t *testing.T) {
	circle := &models.ServiceArea{
		Kind:     models.AreaCircle,
		Center:   models.GeoPoint{Lat: 30.2672, Lng: -97.7431},
		RadiusKM: 25,
	}
	// Round Rock is ~25km from downtown Austin
	assert.True(t, AreaContains(circle, models.GeoPoint{Lat: 30.35, Lng: -97.72}))
	assert.False(t, AreaContains(circle, models.GeoPoint{Lat: 32.7767, Lng: -96.7970}))

	polygon := &models.ServiceArea{
		Kind: models.AreaPolygon,
		Points: []models.GeoPoint{
			{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0},
		},
	}
	assert.True(t, AreaContains(polygon, models.GeoPoint{Lat: 0.5, Lng: 0.5}))

	unknown := &models.ServiceArea{Kind: "hexagon"}
	assert.False(t, AreaContains(unknown, models.GeoPoint{}))
}

func TestAreaCoversZip(t *testing.T) {
	area := &models.ServiceArea{ZipCodes: []string{"78701", "787*"}}

	assert.True(t, AreaCoversZip(area, "78701"))
	assert.True(t, AreaCoversZip(area, "78745"))
	assert.False(t, AreaCoversZip(area, "75201"))
	assert.False(t, AreaCoversZip(&models.ServiceArea{}, "78701"))
}
