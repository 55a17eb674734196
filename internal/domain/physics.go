package domain

import "math"

const (
	// EarthRadius is the radius of the Earth in metres as assumed in the
	// ECMWF IFS.
	EarthRadius = 6_371_229

	// MWRatio is the ratio of the molecular weight of water vapor to dry air.
	MWRatio = 0.62198

	// T0 is the triple point of water (K).
	T0 = 273.16

	hPaToPa = 100
	mToKm   = 1e-3
)

// GeometricHeight converts geopotential height (m) to geometric height (m)
// on the IFS sphere.
//
// ECMWF (2023). ERA5: compute pressure and geopotential on model levels,
// geopotential height and geometric height. https://confluence.ecmwf.int/x/JJh0CQ
func GeometricHeight(geopotentialHeight []float64) []float64 {
	out := make([]float64, len(geopotentialHeight))
	for i, h := range geopotentialHeight {
		out[i] = EarthRadius * h / (EarthRadius - h)
	}
	return out
}

// VerticalWind converts vertical wind from pressure coordinates (Pa s-1) to
// cartesian coordinates (m s-1) by differencing height and pressure between
// adjacent levels. The lowest layer is bounded by the ground and the
// surface pressure. Levels must be ordered surface to top.
func VerticalWind(height, pressure, omega []float64, sfcPressure float64) []float64 {
	out := make([]float64, len(omega))
	prevHeight, prevPressure := 0.0, sfcPressure
	for i := range omega {
		dz := height[i] - prevHeight
		dp := pressure[i] - prevPressure
		out[i] = omega[i] * dz / dp
		prevHeight, prevPressure = height[i], pressure[i]
	}
	return out
}

// SaturationVaporPressure calculates saturation vapor pressure (Pa) over
// liquid above freezing and over ice below freezing using the Goff-Gratch
// formulae.
//
// Vömel, H. (2016). Saturation vapor pressure formulations.
// http://cires1.colorado.edu/~voemel/vp.html
func SaturationVaporPressure(temperature []float64) []float64 {
	out := make([]float64, len(temperature))
	for i, t := range temperature {
		ratio := T0 / t
		invRatio := t / T0
		if t < T0 {
			out[i] = hPaToPa * math.Pow(10,
				-9.09718*(ratio-1)-
					3.56654*math.Log10(ratio)+
					0.876793*(1-invRatio)+
					math.Log10(6.1071))
		} else {
			out[i] = hPaToPa * math.Pow(10,
				10.79574*(1-ratio)-
					5.02800*math.Log10(invRatio)+
					1.50475e-4*(1-math.Pow(10, -8.2969*(invRatio-1)))+
					0.42873e-3*(math.Pow(10, 4.76955*(1-ratio))-1)+
					0.78614)
		}
	}
	return out
}

// VaporPressure calculates the partial pressure of water vapor (Pa) from
// air pressure (Pa) and specific humidity (kg kg-1).
func VaporPressure(pressure, specificHumidity []float64) []float64 {
	out := make([]float64, len(pressure))
	for i, p := range pressure {
		q := specificHumidity[i]
		out[i] = q * p / (MWRatio + (1-MWRatio)*q)
	}
	return out
}

// RelativeHumidity calculates relative humidity (1) with respect to liquid
// above freezing and with respect to ice below freezing.
func RelativeHumidity(pressure, temperature, specificHumidity []float64) []float64 {
	vp := VaporPressure(pressure, specificHumidity)
	svp := SaturationVaporPressure(temperature)
	out := make([]float64, len(vp))
	for i := range out {
		out[i] = vp[i] / svp[i]
	}
	return out
}
