package netcdf

import "github.com/actris-cloudnet/model-munger/internal/domain"

type varKind int

const (
	scalarVar varKind = iota
	surfaceVar
	levelVar
)

// varSpec couples one product variable's CF metadata with the accessor
// that pulls its values out of a site series. Scalar variables describe
// the gridpoint, surface variables have dimension (time), level
// variables (time, level).
type varSpec struct {
	name         string
	units        string
	longName     string
	standardName string
	comment      string
	kind         varKind
	scalar       func(*domain.SiteTimeSeries) float64
	surface      func(*domain.Profile) float64
	levels       func(*domain.Profile) []float64
}

func (s *varSpec) dims() []string {
	switch s.kind {
	case surfaceVar:
		return []string{"time"}
	case levelVar:
		return []string{"time", "level"}
	default:
		return nil
	}
}

// productVars lists every serialized variable in file order. Soil
// temperature is collected from the model but has no entry here and is
// therefore not written.
var productVars = []varSpec{
	{
		name:         "latitude",
		units:        "degree_north",
		longName:     "Latitude of model gridpoint",
		standardName: "latitude",
		kind:         scalarVar,
		scalar:       func(s *domain.SiteTimeSeries) float64 { return s.Latitude },
	},
	{
		name:         "longitude",
		units:        "degree_east",
		longName:     "Longitude of model gridpoint",
		standardName: "longitude",
		kind:         scalarVar,
		scalar:       func(s *domain.SiteTimeSeries) float64 { return s.Longitude },
	},
	{
		name:     "horizontal_resolution",
		units:    "km",
		longName: "Horizontal resolution of model",
		kind:     scalarVar,
		scalar:   func(s *domain.SiteTimeSeries) float64 { return s.ResolutionKm },
	},
	{
		name:         "sfc_pressure",
		units:        "Pa",
		longName:     "Surface pressure",
		standardName: "surface_air_pressure",
		kind:         surfaceVar,
		surface:      func(p *domain.Profile) float64 { return p.SfcPressure },
	},
	{
		name:     "sfc_pressure_amsl",
		units:    "Pa",
		longName: "Surface pressure at mean sea level",
		kind:     surfaceVar,
		surface:  func(p *domain.Profile) float64 { return p.SfcPressureAMSL },
	},
	{
		name:     "sfc_temp_2m",
		units:    "K",
		longName: "Temperature at 2m",
		kind:     surfaceVar,
		surface:  func(p *domain.Profile) float64 { return p.SfcTemp2m },
	},
	{
		name:     "sfc_dewpoint_temp_2m",
		units:    "K",
		longName: "Dew point temperature at 2m",
		kind:     surfaceVar,
		surface:  func(p *domain.Profile) float64 { return p.SfcDewpoint2m },
	},
	{
		name:     "sfc_wind_u_10m",
		units:    "m s-1",
		longName: "Zonal wind at 10 m",
		kind:     surfaceVar,
		surface:  func(p *domain.Profile) float64 { return p.SfcWindU10m },
	},
	{
		name:     "sfc_wind_v_10m",
		units:    "m s-1",
		longName: "Meridional wind at 10 m",
		kind:     surfaceVar,
		surface:  func(p *domain.Profile) float64 { return p.SfcWindV10m },
	},
	{
		name:         "pressure",
		units:        "Pa",
		longName:     "Pressure",
		standardName: "air_pressure",
		kind:         levelVar,
		levels:       func(p *domain.Profile) []float64 { return p.Pressure },
	},
	{
		name:         "temperature",
		units:        "K",
		longName:     "Temperature",
		standardName: "air_temperature",
		kind:         levelVar,
		levels:       func(p *domain.Profile) []float64 { return p.Temperature },
	},
	{
		name:         "uwind",
		units:        "m s-1",
		longName:     "Zonal wind",
		standardName: "eastward_wind",
		kind:         levelVar,
		levels:       func(p *domain.Profile) []float64 { return p.UWind },
	},
	{
		name:         "vwind",
		units:        "m s-1",
		longName:     "Meridional wind",
		standardName: "northward_wind",
		kind:         levelVar,
		levels:       func(p *domain.Profile) []float64 { return p.VWind },
	},
	{
		name:         "wwind",
		units:        "m s-1",
		longName:     "Vertical wind",
		standardName: "upward_air_velocity",
		comment:      "The vertical wind has been calculated from omega (Pa s-1), height and pressure using: w=omega*dz/dp",
		kind:         levelVar,
		levels:       func(p *domain.Profile) []float64 { return p.WWind },
	},
	{
		name:         "omega",
		units:        "Pa s-1",
		longName:     "Vertical wind in pressure coordinates",
		standardName: "omega",
		kind:         levelVar,
		levels:       func(p *domain.Profile) []float64 { return p.Omega },
	},
	{
		name:         "rh",
		units:        "1",
		longName:     "Relative humidity",
		standardName: "relative_humidity",
		comment:      "With respect to liquid above 0 degrees C and with respect to ice below 0 degrees C. Calculated using Goff-Gratch formula.",
		kind:         levelVar,
		levels:       func(p *domain.Profile) []float64 { return p.RH },
	},
	{
		name:         "q",
		units:        "1",
		longName:     "Specific humidity",
		standardName: "specific_humidity",
		kind:         levelVar,
		levels:       func(p *domain.Profile) []float64 { return p.Q },
	},
	{
		name:     "height",
		units:    "m",
		longName: "Height above ground",
		comment:  "Calculated from geopotential height",
		kind:     levelVar,
		levels:   func(p *domain.Profile) []float64 { return p.Height },
	},
}
