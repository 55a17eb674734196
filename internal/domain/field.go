package domain

import "time"

// LevelType tags the vertical coordinate system of a gridded field,
// mirroring the GRIB typeOfLevel vocabulary.
type LevelType string

const (
	LevelSurface             LevelType = "surface"
	LevelMeanSea             LevelType = "meanSea"
	LevelHeightAboveGround   LevelType = "heightAboveGround"
	LevelDepthBelowLandLayer LevelType = "depthBelowLandLayer"
	LevelIsobaricPa          LevelType = "isobaricInPa"
	LevelIsobaricHPa         LevelType = "isobaricInhPa"
)

// SurfaceClass reports whether the level type yields one scalar per site
// rather than one value per pressure level.
func (l LevelType) SurfaceClass() bool {
	switch l {
	case LevelSurface, LevelMeanSea, LevelHeightAboveGround, LevelDepthBelowLandLayer:
		return true
	}
	return false
}

// IsobaricClass reports whether the level type is pressure-based.
func (l LevelType) IsobaricClass() bool {
	return l == LevelIsobaricPa || l == LevelIsobaricHPa
}

// GridType tags the horizontal grid family of a forecast file.
type GridType string

const (
	GridRegularLL GridType = "regular_ll"
	GridRegularGG GridType = "regular_gg"
	GridReducedLL GridType = "reduced_ll"
	GridReducedGG GridType = "reduced_gg"
)

// Supported reports whether nearest-gridpoint extraction is defined for
// this grid family.
func (g GridType) Supported() bool {
	switch g {
	case GridRegularLL, GridRegularGG, GridReducedLL, GridReducedGG:
		return true
	}
	return false
}

// GridAxes describes the horizontal coordinate system of a gridded field:
// the distinct latitudes in grid row order (ECMWF files scan north to
// south, so the array is typically descending) and the distinct longitudes
// in column order.
type GridAxes struct {
	Type       GridType
	Latitudes  []float64
	Longitudes []float64
}

// GriddedField is one decoded message from a forecast file. Values is the
// full grid in row-major order, rows indexed like Grid.Latitudes. Missing
// gridpoints are NaN.
type GriddedField struct {
	Code      string // canonical short code, e.g. "t" or "10u"
	LevelType LevelType
	Level     float64 // level value; pressure for isobaric levels
	Units     string  // unit string declared by the message
	RefDate   time.Time
	LeadHour  int // forecast lead in hours from the run start
	Values    [][]float64
	Grid      *GridAxes
}

// Snapshot is one forecast lead hour's full set of decoded fields.
type Snapshot struct {
	Source string // originating file, for error context
	Fields []GriddedField
}
