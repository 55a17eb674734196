package domain

import (
	"math"
	"slices"
)

// Profile is the model state extracted for one site at one forecast hour.
// Level vectors are aligned with the run's pressure coordinate, surface to
// top, and hold NaN where the source snapshot carried no value.
type Profile struct {
	Hour float64

	SfcPressure     float64
	SfcPressureAMSL float64
	SfcTemp2m       float64
	SfcDewpoint2m   float64
	SfcWindU10m     float64
	SfcWindV10m     float64
	SoilTemp        float64

	Pressure    []float64
	Temperature []float64
	UWind       []float64
	VWind       []float64
	Omega       []float64
	Q           []float64

	Height []float64
	WWind  []float64
	RH     []float64
}

// NewProfile returns a profile for the given forecast hour with every
// surface value and level vector initialized to NaN.
func NewProfile(hour float64, levels int) *Profile {
	p := &Profile{
		Hour:            hour,
		SfcPressure:     math.NaN(),
		SfcPressureAMSL: math.NaN(),
		SfcTemp2m:       math.NaN(),
		SfcDewpoint2m:   math.NaN(),
		SfcWindU10m:     math.NaN(),
		SfcWindV10m:     math.NaN(),
		SoilTemp:        math.NaN(),
	}
	for _, v := range []*[]float64{
		&p.Pressure, &p.Temperature, &p.UWind, &p.VWind, &p.Omega, &p.Q,
		&p.Height, &p.WWind, &p.RH,
	} {
		*v = nanVector(levels)
	}
	return p
}

// regrid rewrites the profile onto a pressure coordinate fixed after the
// profile was assembled. The original vectors are empty in that case, so
// every level becomes NaN and only the coordinate itself carries values.
func (p *Profile) regrid(pressures []float64) {
	p.Pressure = slices.Clone(pressures)
	n := len(pressures)
	for _, v := range []*[]float64{
		&p.Temperature, &p.UWind, &p.VWind, &p.Omega, &p.Q,
		&p.Height, &p.WWind, &p.RH,
	} {
		*v = nanVector(n)
	}
}

func nanVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}

// SiteTimeSeries is the full extraction result for one site: the gridpoint
// it resolved to and one profile per forecast hour, in hour order.
type SiteTimeSeries struct {
	Site Site

	// Latitude and Longitude are the coordinates of the matched model
	// gridpoint, not of the site itself.
	Latitude     float64
	Longitude    float64
	ResolutionKm float64

	// Pressures is the run's pressure coordinate in Pa, descending. Nil
	// until a snapshot with isobaric levels has been processed.
	Pressures []float64

	Profiles []*Profile
}

// Hours returns the forecast hours of the accumulated profiles.
func (ts *SiteTimeSeries) Hours() []float64 {
	hours := make([]float64, len(ts.Profiles))
	for i, p := range ts.Profiles {
		hours[i] = p.Hour
	}
	return hours
}
