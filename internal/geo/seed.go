package geo

import (
	"fmt"
	"os"

	"cleanhive/internal/models"

	"gopkg.in/yaml.v2"
)

type areaSeed struct {
	Name     string            `yaml:"name"`
	Kind     string            `yaml:"kind"`
	Points   []models.GeoPoint `yaml:"points"`
	Center   models.GeoPoint   `yaml:"center"`
	RadiusKM float64           `yaml:"radius_km"`
	ZipCodes []string          `yaml:"zip_codes"`
}

type areaSeedFile struct {
	Areas []areaSeed `yaml:"areas"`
}

// LoadAreasFile reads the service area seed file shipped with the deploy.
// Seeded areas are always created active.
func LoadAreasFile(path string) ([]*models.ServiceArea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file areaSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse service areas file: %w", err)
	}

	areas := make([]*models.ServiceArea, 0, len(file.Areas))
	for i, a := range file.Areas {
		if a.Name == "" {
			return nil, fmt.Errorf("area #%d: name is required", i+1)
		}
		switch a.Kind {
		case models.AreaPolygon:
			if len(a.Points) < 3 {
				return nil, fmt.Errorf("area %q: polygon needs at least 3 points", a.Name)
			}
		case models.AreaCircle:
			if a.RadiusKM <= 0 {
				return nil, fmt.Errorf("area %q: circle needs a positive radius", a.Name)
			}
		default:
			return nil, fmt.Errorf("area %q: unknown kind %q", a.Name, a.Kind)
		}

		areas = append(areas, &models.ServiceArea{
			Name:     a.Name,
			Kind:     a.Kind,
			Points:   a.Points,
			Center:   a.Center,
			RadiusKM: a.RadiusKM,
			ZipCodes: a.ZipCodes,
			IsActive: true,
		})
	}
	return areas, nil
}
