package domain

import (
	"fmt"
	"math"
)

// GridLocation is the model gridpoint a site resolved to.
type GridLocation struct {
	LatIndex     int
	LonIndex     int
	Latitude     float64
	Longitude    float64
	ResolutionKm float64
}

// Locate resolves every site to its nearest gridpoint by matching each
// axis independently. Ties go to the lower index, so matching is
// deterministic for sites exactly between two gridpoints. The resolution
// is the zonal grid spacing as arc length on the IFS sphere, rounded to
// whole kilometres.
func Locate(axes *GridAxes, sites []Site) ([]GridLocation, error) {
	if !axes.Type.Supported() {
		return nil, &UnsupportedGridError{Type: axes.Type}
	}
	if len(axes.Latitudes) == 0 || len(axes.Longitudes) < 2 {
		return nil, fmt.Errorf("degenerate grid: %d latitudes, %d longitudes",
			len(axes.Latitudes), len(axes.Longitudes))
	}
	increment := math.Abs(axes.Longitudes[1] - axes.Longitudes[0])
	resolution := increment / 360 * 2 * math.Pi * EarthRadius
	resolutionKm := math.Round(resolution * mToKm)

	locations := make([]GridLocation, len(sites))
	for i, site := range sites {
		latIdx := nearestIndex(axes.Latitudes, site.Latitude)
		lonIdx := nearestIndex(axes.Longitudes, site.Longitude)
		locations[i] = GridLocation{
			LatIndex:     latIdx,
			LonIndex:     lonIdx,
			Latitude:     axes.Latitudes[latIdx],
			Longitude:    axes.Longitudes[lonIdx],
			ResolutionKm: resolutionKm,
		}
	}
	return locations, nil
}

func nearestIndex(axis []float64, value float64) int {
	best := 0
	bestDist := math.Abs(axis[0] - value)
	for i := 1; i < len(axis); i++ {
		if d := math.Abs(axis[i] - value); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
