package geo

import (
	"os"
	"path/filepath"
	"testing"

	"cleanhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "areas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAreasFile(t *testing.T) {
	path := writeSeedFile(t, `
areas:
  - name: Downtown
    kind: circle
    center:
      lat: 30.26
      lng: -97.74
    radius_km: 20
    zip_codes: ["787*"]
  - name: North
    kind: polygon
    points:
      - { lat: 30.56, lng: -97.72 }
      - { lat: 30.56, lng: -97.62 }
      - { lat: 30.47, lng: -97.62 }
`)

	areas, err := LoadAreasFile(path)
	require.NoError(t, err)
	require.Len(t, areas, 2)

	assert.Equal(t, "Downtown", areas[0].Name)
	assert.Equal(t, models.AreaCircle, areas[0].Kind)
	assert.Equal(t, 20.0, areas[0].RadiusKM)
	assert.Equal(t, []string{"787*"}, areas[0].ZipCodes)
	assert.True(t, areas[0].IsActive)

	assert.Equal(t, models.AreaPolygon, areas[1].Kind)
	assert.Len(t, areas[1].Points, 3)
}

func TestLoadAreasFileRejectsBadAreas(t *testing.T) {
	cases := map[string]string{
		"missing name": `
areas:
  - kind: circle
    center: { lat: 1, lng: 1 }
    radius_km: 5
`,
		"unknown kind": `
areas:
  - name: X
    kind: square
`,
		"degenerate polygon": `
areas:
  - name: X
    kind: polygon
    points:
      - { lat: 1, lng: 1 }
`,
		"zero radius": `
areas:
  - name: X
    kind: circle
    center: { lat: 1, lng: 1 }
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadAreasFile(writeSeedFile(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadAreasFileMissing(t *testing.T) {
	_, err := LoadAreasFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
