// Package domain models ECMWF open-data forecast fields and the per-site
// atmospheric profiles extracted from them.
//
// # Data Source
//
// Input is the open-data subset of the ECMWF IFS high-resolution forecast,
// published as GRIB2 at https://data.ecmwf.int/forecasts/. One file per
// forecast lead hour, 3-hour stride, lead hours 0 through 24 for the 00 UTC
// run. Each file carries the full 0.25-degree global grid for a fixed set of
// surface and pressure-level variables.
//
// # Variable Contract
//
// Fields are identified by their GRIB short code. Every code has a
// contractual unit the message must declare and a canonical name used in
// the output files:
//
//	10u  m s**-1    sfc_wind_u_10m         10 m zonal wind
//	10v  m s**-1    sfc_wind_v_10m         10 m meridional wind
//	2d   K          sfc_dewpoint_temp_2m   2 m dew point
//	2t   K          sfc_temp_2m            2 m temperature
//	gh   gpm        _gh                    geopotential height (internal)
//	msl  Pa         sfc_pressure_amsl      mean sea level pressure
//	q    kg kg**-1  q                      specific humidity
//	sp   Pa         sfc_pressure           surface pressure
//	st   K          soil_temperature       soil temperature
//	t    K          temperature            air temperature
//	u    m s**-1    uwind                  zonal wind
//	v    m s**-1    vwind                  meridional wind
//	w    Pa s**-1   omega                  vertical wind, pressure coords
//
// Names starting with "_" are derivation inputs only and never appear in
// output. A unit string differing from the contract aborts the run: the
// derived physics below assumes these exact units.
//
// # Level Conventions
//
// Surface-class levels (surface, meanSea, heightAboveGround,
// depthBelowLandLayer) yield one scalar per site per hour. Isobaric levels
// (isobaricInPa, isobaricInhPa) yield one value per pressure level;
// hectopascal levels are converted to pascal on collection. The run's
// pressure coordinate is the distinct set of pressures seen in the first
// snapshot that carries isobaric data, sorted descending (surface to top),
// and is fixed for the rest of the run. A later snapshot reporting a
// pressure outside that set is a fatal coordinate drift.
//
// # Missing Values
//
// A recognized variable absent from a snapshot is not an error: its slot is
// NaN for that hour. NaN propagates through every derived quantity.
//
// # Derived Quantities
//
// Geometric height from geopotential height via the IFS spherical-Earth
// relation (see [GeometricHeight]), vertical wind from omega via w = ω·Δz/Δp
// with surface boundary differencing (see [VerticalWind]), and relative
// humidity from the Goff-Gratch saturation vapor pressure, phase-selected at
// the triple point per level (see [RelativeHumidity]).
package domain
