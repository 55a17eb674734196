package domain

import (
	"fmt"
	"slices"
	"time"
)

// LeadStepHours is the stride between consecutive forecast snapshots.
const LeadStepHours = 3

// levelSample is one recognized isobaric field reduced to the site
// gridpoints, keyed by its pressure in Pa.
type levelSample struct {
	pressure float64
	code     string
	values   []float64
}

// Assembler folds decoded snapshots into per-site time series.
//
// Snapshots must arrive in forecast order: the i-th snapshot is expected
// to hold fields for lead hour 3*i of the run date. The first recognized
// field fixes the grid and resolves every site to its nearest gridpoint;
// the first snapshot carrying isobaric levels fixes the pressure
// coordinate. A recognized field that breaks the time, unit, grid or
// pressure contract aborts the snapshot before it touches the accumulated
// series.
type Assembler struct {
	catalogue Catalogue
	date      time.Time
	sites     []Site

	grid      *GridAxes
	locations []GridLocation
	pressures []float64
	series    []*SiteTimeSeries
	snapshots int
}

// NewAssembler prepares a run for the given date and sites. Fields are
// checked against the date by calendar day, so any time of day works.
func NewAssembler(catalogue Catalogue, date time.Time, sites []Site) *Assembler {
	series := make([]*SiteTimeSeries, len(sites))
	for i, site := range sites {
		series[i] = &SiteTimeSeries{Site: site}
	}
	return &Assembler{
		catalogue: catalogue,
		date:      date,
		sites:     sites,
		series:    series,
	}
}

// ProcessSnapshot validates one lead hour's fields and appends a profile
// to every site's series. Unrecognized variables and unknown level types
// are skipped. Recognized fields that fail validation return one of
// [ErrGridChanged], [*UnsupportedGridError], [*TimeMismatchError],
// [*UnitMismatchError] or [*PressureCoordinateDriftError]; the caller
// should treat all of these as fatal for the run.
func (a *Assembler) ProcessSnapshot(snap *Snapshot) error {
	hour := LeadStepHours * a.snapshots

	surface := make(map[string][]float64)
	var levels []levelSample

	for i := range snap.Fields {
		field := &snap.Fields[i]
		if !a.catalogue.Recognizes(field.Code) {
			continue
		}
		if !field.LevelType.SurfaceClass() && !field.LevelType.IsobaricClass() {
			continue
		}
		if err := a.resolveGrid(field.Grid); err != nil {
			return err
		}
		if field.RefDate.Year() != a.date.Year() ||
			field.RefDate.Month() != a.date.Month() ||
			field.RefDate.Day() != a.date.Day() ||
			field.LeadHour != hour {
			return &TimeMismatchError{
				Code:         field.Code,
				RefDate:      field.RefDate,
				LeadHour:     field.LeadHour,
				WantDate:     a.date,
				WantLeadHour: hour,
			}
		}
		if want := a.catalogue.Unit(field.Code); field.Units != want {
			return &UnitMismatchError{Code: field.Code, Unit: field.Units, Want: want}
		}
		values, err := a.sample(field)
		if err != nil {
			return err
		}
		if field.LevelType.SurfaceClass() {
			surface[field.Code] = values
			continue
		}
		pressure := field.Level
		if field.LevelType == LevelIsobaricHPa {
			pressure *= hPaToPa
		}
		levels = append(levels, levelSample{pressure: pressure, code: field.Code, values: values})
	}

	if a.pressures == nil && len(levels) > 0 {
		a.establishPressures(levels)
	}
	indices := make([]int, len(levels))
	for i, level := range levels {
		idx := slices.Index(a.pressures, level.pressure)
		if idx < 0 {
			return &PressureCoordinateDriftError{Code: level.code, Pressure: level.pressure}
		}
		indices[i] = idx
	}

	for j, ts := range a.series {
		p := NewProfile(float64(hour), len(a.pressures))
		copy(p.Pressure, a.pressures)
		geopotential := nanVector(len(a.pressures))
		for i, level := range levels {
			idx := indices[i]
			switch level.code {
			case "t":
				p.Temperature[idx] = level.values[j]
			case "u":
				p.UWind[idx] = level.values[j]
			case "v":
				p.VWind[idx] = level.values[j]
			case "w":
				p.Omega[idx] = level.values[j]
			case "q":
				p.Q[idx] = level.values[j]
			case "gh":
				geopotential[idx] = level.values[j]
			}
		}
		for code, values := range surface {
			switch code {
			case "sp":
				p.SfcPressure = values[j]
			case "msl":
				p.SfcPressureAMSL = values[j]
			case "2t":
				p.SfcTemp2m = values[j]
			case "2d":
				p.SfcDewpoint2m = values[j]
			case "10u":
				p.SfcWindU10m = values[j]
			case "10v":
				p.SfcWindV10m = values[j]
			case "st":
				p.SoilTemp = values[j]
			}
		}
		p.Height = GeometricHeight(geopotential)
		p.WWind = VerticalWind(p.Height, p.Pressure, p.Omega, p.SfcPressure)
		p.RH = RelativeHumidity(p.Pressure, p.Temperature, p.Q)
		ts.Profiles = append(ts.Profiles, p)
	}

	a.snapshots++
	return nil
}

// Series returns the accumulated per-site time series in site order. The
// slice is shared with the assembler and valid to read once all snapshots
// have been processed.
func (a *Assembler) Series() []*SiteTimeSeries {
	return a.series
}

// resolveGrid fixes the grid on first use and rejects any later deviation
// from it.
func (a *Assembler) resolveGrid(grid *GridAxes) error {
	if a.grid == nil {
		locations, err := Locate(grid, a.sites)
		if err != nil {
			return err
		}
		a.grid = grid
		a.locations = locations
		for i, ts := range a.series {
			ts.Latitude = locations[i].Latitude
			ts.Longitude = locations[i].Longitude
			ts.ResolutionKm = locations[i].ResolutionKm
		}
		return nil
	}
	if grid == a.grid {
		return nil
	}
	if grid.Type != a.grid.Type ||
		!slices.Equal(grid.Latitudes, a.grid.Latitudes) ||
		!slices.Equal(grid.Longitudes, a.grid.Longitudes) {
		return ErrGridChanged
	}
	return nil
}

// sample reduces a full grid to one value per site.
func (a *Assembler) sample(field *GriddedField) ([]float64, error) {
	values := make([]float64, len(a.locations))
	for i, loc := range a.locations {
		if loc.LatIndex >= len(field.Values) || loc.LonIndex >= len(field.Values[loc.LatIndex]) {
			return nil, fmt.Errorf("field %s: values do not cover gridpoint (%d, %d)",
				field.Code, loc.LatIndex, loc.LonIndex)
		}
		values[i] = field.Values[loc.LatIndex][loc.LonIndex]
	}
	return values, nil
}

// establishPressures fixes the run's pressure coordinate from the first
// isobaric snapshot, descending so index 0 is closest to the surface.
// Profiles assembled before any isobaric data arrived are rewritten onto
// the new coordinate as all-NaN rows.
func (a *Assembler) establishPressures(levels []levelSample) {
	seen := make(map[float64]struct{}, len(levels))
	var pressures []float64
	for _, level := range levels {
		if _, ok := seen[level.pressure]; ok {
			continue
		}
		seen[level.pressure] = struct{}{}
		pressures = append(pressures, level.pressure)
	}
	slices.Sort(pressures)
	slices.Reverse(pressures)
	a.pressures = pressures
	for _, ts := range a.series {
		ts.Pressures = slices.Clone(pressures)
		for _, p := range ts.Profiles {
			p.regrid(pressures)
		}
	}
}
