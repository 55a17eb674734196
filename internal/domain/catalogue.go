package domain

// Catalogue fixes the set of recognized forecast variables for a run: the
// unit each GRIB short code is contractually expected to declare and the
// canonical name it gets in output. Immutable after construction so
// concurrent runs can hold independent variable sets.
type Catalogue struct {
	units map[string]string
	names map[string]string
}

// NewCatalogue builds a catalogue from short-code to unit and short-code to
// canonical-name tables. Both maps are copied. Codes present in only one of
// the two tables are dropped: a variable without a unit contract cannot be
// validated, and one without a name cannot be emitted.
func NewCatalogue(units, names map[string]string) Catalogue {
	c := Catalogue{
		units: make(map[string]string, len(units)),
		names: make(map[string]string, len(names)),
	}
	for code, unit := range units {
		if _, ok := names[code]; !ok {
			continue
		}
		c.units[code] = unit
		c.names[code] = names[code]
	}
	return c
}

// DefaultCatalogue returns the ECMWF open-data variable set.
func DefaultCatalogue() Catalogue {
	return NewCatalogue(
		map[string]string{
			"10u": "m s**-1",
			"10v": "m s**-1",
			"2d":  "K",
			"2t":  "K",
			"gh":  "gpm",
			"msl": "Pa",
			"q":   "kg kg**-1",
			"sp":  "Pa",
			"st":  "K",
			"t":   "K",
			"u":   "m s**-1",
			"v":   "m s**-1",
			"w":   "Pa s**-1",
		},
		map[string]string{
			"10u": "sfc_wind_u_10m",
			"10v": "sfc_wind_v_10m",
			"2d":  "sfc_dewpoint_temp_2m",
			"2t":  "sfc_temp_2m",
			"gh":  "_gh",
			"msl": "sfc_pressure_amsl",
			"q":   "q",
			"sp":  "sfc_pressure",
			"st":  "soil_temperature",
			"t":   "temperature",
			"u":   "uwind",
			"v":   "vwind",
			"w":   "omega",
		},
	)
}

// Recognizes reports whether the code is part of the run's variable set.
func (c Catalogue) Recognizes(code string) bool {
	_, ok := c.units[code]
	return ok
}

// Unit returns the contractual unit string for a recognized code.
func (c Catalogue) Unit(code string) string { return c.units[code] }

// Name returns the canonical output name for a recognized code.
func (c Catalogue) Name(code string) string { return c.names[code] }
