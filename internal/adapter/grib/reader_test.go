package grib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actris-cloudnet/model-munger/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		shortName string
		level     string
		code      string
		levelType domain.LevelType
		units     string
	}{
		{"isobaric zonal wind", "UGRD", "850 mb", "u", domain.LevelIsobaricHPa, "m s**-1"},
		{"surface zonal wind", "UGRD", "10 m above ground", "10u", domain.LevelHeightAboveGround, "m s**-1"},
		{"isobaric meridional wind", "VGRD", "1000 mb", "v", domain.LevelIsobaricHPa, "m s**-1"},
		{"surface meridional wind", "VGRD", "10 m above ground", "10v", domain.LevelHeightAboveGround, "m s**-1"},
		{"isobaric temperature", "TMP", "500 mb", "t", domain.LevelIsobaricHPa, "K"},
		{"screen temperature", "TMP", "2 m above ground", "2t", domain.LevelHeightAboveGround, "K"},
		{"screen dewpoint", "DPT", "2 m above ground", "2d", domain.LevelHeightAboveGround, "K"},
		{"geopotential height", "HGT", "925 mb", "gh", domain.LevelIsobaricHPa, "gpm"},
		{"specific humidity", "SPFH", "700 mb", "q", domain.LevelIsobaricHPa, "kg kg**-1"},
		{"omega", "VVEL", "300 mb", "w", domain.LevelIsobaricHPa, "Pa s**-1"},
		{"mean sea level pressure", "PRMSL", "mean sea level", "msl", domain.LevelMeanSea, "Pa"},
		{"surface pressure", "PRES", "surface", "sp", domain.LevelSurface, "Pa"},
		{"soil temperature", "TSOIL", "0-0.1 m below ground", "st", domain.LevelDepthBelowLandLayer, "K"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, levelType, units, ok := classify(tt.shortName, tt.level)

			require.True(t, ok)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.levelType, levelType)
			assert.Equal(t, tt.units, units)
		})
	}

	t.Run("outside the vocabulary", func(t *testing.T) {
		rejects := []struct {
			shortName string
			level     string
		}{
			{"REFC", "entire atmosphere"},
			{"APCP", "surface"},
			{"UGRD", "80 m above ground"},
			{"DPT", "850 mb"},
			{"HGT", "surface"},
			{"PRES", "mean sea level"},
			{"TMP", "entire atmosphere"},
		}
		for _, r := range rejects {
			_, _, _, ok := classify(r.shortName, r.level)
			assert.False(t, ok, "%s at %q", r.shortName, r.level)
		}
	})
}

func TestReshape(t *testing.T) {
	t.Run("regular grid", func(t *testing.T) {
		lats := []float32{50, 50, 50, 49.75, 49.75, 49.75}
		lons := []float32{10, 10.25, 10.5, 10, 10.25, 10.5}
		data := []float32{0, 1, 2, 3, 4, 5}

		axes, values, err := reshape(lats, lons, data)

		require.NoError(t, err)
		assert.Equal(t, []float64{50, 49.75}, axes.Latitudes)
		assert.Equal(t, []float64{10, 10.25, 10.5}, axes.Longitudes)
		require.Len(t, values, 2)
		assert.Equal(t, []float64{0, 1, 2}, values[0])
		assert.Equal(t, []float64{3, 4, 5}, values[1])
	})

	t.Run("missing values become NaN", func(t *testing.T) {
		lats := []float32{50, 50}
		lons := []float32{10, 10.25}
		data := []float32{1, 9.999e20}

		_, values, err := reshape(lats, lons, data)

		require.NoError(t, err)
		assert.Equal(t, 1.0, values[0][0])
		assert.True(t, math.IsNaN(values[0][1]))
	})

	t.Run("longitudes normalize to signed degrees", func(t *testing.T) {
		lats := []float32{50, 50}
		lons := []float32{359.75, 180}
		data := []float32{1, 2}

		axes, _, err := reshape(lats, lons, data)

		require.NoError(t, err)
		assert.Equal(t, []float64{-0.25, 180}, axes.Longitudes)
	})

	t.Run("varying row length rejected", func(t *testing.T) {
		lats := []float32{50, 50, 50, 49.75, 49.75}
		lons := []float32{10, 10.25, 10.5, 10, 10.25}
		data := []float32{0, 1, 2, 3, 4}

		_, _, err := reshape(lats, lons, data)

		assert.Error(t, err)
	})

	t.Run("row drift rejected", func(t *testing.T) {
		lats := []float32{50, 50, 50, 49.75, 49.75, 49.5}
		lons := []float32{10, 10.25, 10.5, 10, 10.25, 10.5}
		data := []float32{0, 1, 2, 3, 4, 5}

		_, _, err := reshape(lats, lons, data)

		assert.ErrorContains(t, err, "off the regular grid")
	})

	t.Run("inconsistent array lengths rejected", func(t *testing.T) {
		_, _, err := reshape([]float32{50}, []float32{10, 10.25}, []float32{1, 2})
		assert.Error(t, err)
	})

	t.Run("empty input rejected", func(t *testing.T) {
		_, _, err := reshape(nil, nil, nil)
		assert.Error(t, err)
	})
}
