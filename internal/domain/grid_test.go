package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quarterDegreeAxes() *GridAxes {
	return &GridAxes{
		Type:       GridRegularLL,
		Latitudes:  []float64{52.0, 51.75, 51.5, 51.25},
		Longitudes: []float64{23.0, 23.25, 23.5, 23.75},
	}
}

func TestLocate(t *testing.T) {
	t.Run("nearest gridpoint per site", func(t *testing.T) {
		sites := []Site{
			{ID: "exact", Latitude: 51.75, Longitude: 23.5},
			{ID: "nearby", Latitude: 51.69, Longitude: 23.54},
			{ID: "outside", Latitude: 40.0, Longitude: 30.0},
		}

		locations, err := Locate(quarterDegreeAxes(), sites)

		require.NoError(t, err)
		require.Len(t, locations, 3)
		assert.Equal(t, 1, locations[0].LatIndex)
		assert.Equal(t, 2, locations[0].LonIndex)
		assert.Equal(t, 51.75, locations[0].Latitude)
		assert.Equal(t, 23.5, locations[0].Longitude)
		assert.Equal(t, 1, locations[1].LatIndex)
		assert.Equal(t, 2, locations[1].LonIndex)
		// Sites outside the grid clamp to the nearest edge point.
		assert.Equal(t, 3, locations[2].LatIndex)
		assert.Equal(t, 3, locations[2].LonIndex)
	})

	t.Run("tie resolves to the lower index", func(t *testing.T) {
		sites := []Site{{ID: "between", Latitude: 51.875, Longitude: 23.125}}

		locations, err := Locate(quarterDegreeAxes(), sites)

		require.NoError(t, err)
		assert.Equal(t, 0, locations[0].LatIndex)
		assert.Equal(t, 0, locations[0].LonIndex)
	})

	t.Run("quarter degree resolution rounds to 28 km", func(t *testing.T) {
		locations, err := Locate(quarterDegreeAxes(), []Site{{ID: "any"}})

		require.NoError(t, err)
		assert.Equal(t, 28.0, locations[0].ResolutionKm)
	})

	t.Run("gaussian grid accepted", func(t *testing.T) {
		axes := quarterDegreeAxes()
		axes.Type = GridRegularGG

		_, err := Locate(axes, []Site{{ID: "any"}})

		assert.NoError(t, err)
	})

	t.Run("unsupported grid type", func(t *testing.T) {
		axes := quarterDegreeAxes()
		axes.Type = GridType("space_view")

		_, err := Locate(axes, []Site{{ID: "any"}})

		var unsupported *UnsupportedGridError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, GridType("space_view"), unsupported.Type)
	})

	t.Run("degenerate axes", func(t *testing.T) {
		axes := &GridAxes{Type: GridRegularLL, Latitudes: []float64{52.0}, Longitudes: []float64{23.0}}

		_, err := Locate(axes, []Site{{ID: "any"}})

		assert.Error(t, err)
	})

	t.Run("no sites", func(t *testing.T) {
		locations, err := Locate(quarterDegreeAxes(), nil)

		require.NoError(t, err)
		assert.Empty(t, locations)
	})
}

func TestGridTypeSupported(t *testing.T) {
	assert.True(t, GridRegularLL.Supported())
	assert.True(t, GridRegularGG.Supported())
	assert.True(t, GridReducedLL.Supported())
	assert.True(t, GridReducedGG.Supported())
	assert.False(t, GridType("lambert").Supported())
	assert.False(t, GridType("").Supported())
}
