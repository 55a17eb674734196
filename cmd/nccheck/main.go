// Command nccheck validates produced model files: structure, global
// attributes, time axis, pressure coordinate, and physical plausibility
// of the values. Data is read with a NetCDF decoder independent of the
// one the writer uses, so a passing file is more than self-consistent.
//
// Usage:
//
//	go run ./cmd/nccheck output/20250314_hyytiala_ecmwf-open.nc ...
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/cdf"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s file.nc [file.nc ...]\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	code := 0
	for _, path := range flag.Args() {
		if checkFile(path) != 0 {
			code = 1
		}
	}
	os.Exit(code)
}

func checkFile(path string) int {
	fmt.Printf("=== %s ===\n\n", path)

	nc, err := netcdf.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open: %v\n", err)
		return 1
	}
	defer nc.Close()

	vars, p1 := checkStructure(nc)
	phases := []*phase{
		p1,
		checkAttributes(path),
		checkTimeAxis(vars),
		checkCoordinates(vars),
		checkValueRanges(vars),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-40s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// Variable names by shape, in file order.
var (
	scalarVars  = []string{"latitude", "longitude", "horizontal_resolution"}
	surfaceVars = []string{
		"time", "sfc_pressure", "sfc_pressure_amsl", "sfc_temp_2m",
		"sfc_dewpoint_temp_2m", "sfc_wind_u_10m", "sfc_wind_v_10m",
	}
	levelVars = []string{
		"pressure", "temperature", "uwind", "vwind", "wwind",
		"omega", "rh", "q", "height",
	}
)

// fileVars caches the decoded values of every expected variable.
type fileVars struct {
	scalars map[string]float64
	series  map[string][]float32
	grids   map[string][][]float32
	hours   int
	levels  int
}

// ── Phase 1: Structure ──
// Every expected variable must resolve and carry a consistent shape.

func checkStructure(nc api.Group) (*fileVars, *phase) {
	p := &phase{name: "Phase 1: Structure"}
	vars := &fileVars{
		scalars: map[string]float64{},
		series:  map[string][]float32{},
		grids:   map[string][][]float32{},
	}

	for _, name := range scalarVars {
		v, err := varValues(nc, name)
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		val, ok := scalarValue(v)
		if !ok {
			p.errorf("%s: expected scalar, got %T", name, v)
			continue
		}
		vars.scalars[name] = val
	}

	for _, name := range surfaceVars {
		v, err := varValues(nc, name)
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		series, ok := v.([]float32)
		if !ok {
			p.errorf("%s: expected float32 vector, got %T", name, v)
			continue
		}
		vars.series[name] = series
	}

	for _, name := range levelVars {
		v, err := varValues(nc, name)
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		grid, ok := v.([][]float32)
		if !ok {
			p.errorf("%s: expected float32 matrix, got %T", name, v)
			continue
		}
		vars.grids[name] = grid
	}

	if t, ok := vars.series["time"]; ok {
		vars.hours = len(t)
		if vars.hours == 0 {
			p.errorf("time: empty axis")
		}
	}
	if pr, ok := vars.grids["pressure"]; ok && len(pr) > 0 {
		vars.levels = len(pr[0])
		if vars.levels == 0 {
			p.errorf("pressure: no levels")
		}
	}

	for name, series := range vars.series {
		if name != "time" && len(series) != vars.hours {
			p.errorf("%s: %d values, want %d (one per hour)", name, len(series), vars.hours)
		}
	}
	for name, grid := range vars.grids {
		if len(grid) != vars.hours {
			p.errorf("%s: %d rows, want %d (one per hour)", name, len(grid), vars.hours)
		}
		for i, row := range grid {
			if len(row) != vars.levels {
				p.errorf("%s row %d: %d values, want %d (one per level)", name, i, len(row), vars.levels)
				break
			}
		}
	}

	return vars, p
}

// ── Phase 2: Attributes ──
// Global attributes must identify the product and match the filename.

func checkAttributes(path string) *phase {
	p := &phase{name: "Phase 2: Global attributes"}

	ff, err := os.Open(path)
	if err != nil {
		p.errorf("open: %v", err)
		return p
	}
	defer ff.Close()

	f, err := cdf.Open(ff)
	if err != nil {
		p.errorf("read header: %v", err)
		return p
	}

	attr := func(key string) string {
		v := f.Header.GetAttribute("", key)
		if v == nil {
			p.errorf("missing global attribute %q", key)
			return ""
		}
		s, ok := v.(string)
		if !ok {
			p.errorf("global attribute %q: expected text, got %T", key, v)
			return ""
		}
		return s
	}

	if v := attr("Conventions"); v != "" && v != "CF-1.8" {
		p.errorf("Conventions: %q, want \"CF-1.8\"", v)
	}
	if v := attr("cloudnet_file_type"); v != "" && v != "model" {
		p.errorf("cloudnet_file_type: %q, want \"model\"", v)
	}
	if v := attr("source"); v != "" && v != "ECMWF open data" {
		p.errorf("source: %q, want \"ECMWF open data\"", v)
	}
	if v := attr("title"); v != "" && !strings.HasPrefix(v, "Model data from ") {
		p.errorf("title: %q lacks the \"Model data from\" prefix", v)
	}
	attr("location")
	if v := attr("model_munger_version"); v == "" {
		p.errorf("model_munger_version is empty")
	}

	year, month, day := attr("year"), attr("month"), attr("day")
	if len(month) != 2 || len(day) != 2 {
		p.errorf("month %q and day %q must be zero-padded to two digits", month, day)
	}

	// The filename leads with the measurement date, which the date
	// attributes must agree with.
	base := filepath.Base(path)
	if len(base) >= 8 && year != "" {
		if got, want := year+month+day, base[:8]; got != want {
			p.errorf("date attributes %s do not match filename date %s", got, want)
		}
	}

	return p
}

// ── Phase 3: Time axis ──
// Hours start at zero and step uniformly by the forecast interval.

func checkTimeAxis(vars *fileVars) *phase {
	p := &phase{name: "Phase 3: Time axis"}

	t := vars.series["time"]
	if len(t) == 0 {
		p.errorf("no time values")
		return p
	}
	if t[0] != 0 {
		p.errorf("first hour is %g, want 0", t[0])
	}
	for i := 1; i < len(t); i++ {
		if step := t[i] - t[i-1]; step != 3 {
			p.errorf("hour %g to %g: step %g, want 3", t[i-1], t[i], step)
		}
	}
	if last := t[len(t)-1]; last > 24 {
		p.errorf("last hour is %g, past the end of the day", last)
	}
	return p
}

// ── Phase 4: Coordinates ──
// Gridpoint coordinates and the pressure axis must be physically valid.

func checkCoordinates(vars *fileVars) *phase {
	p := &phase{name: "Phase 4: Coordinates"}

	if lat, ok := vars.scalars["latitude"]; ok && (lat < -90 || lat > 90) {
		p.errorf("latitude %g outside [-90, 90]", lat)
	}
	if lon, ok := vars.scalars["longitude"]; ok && (lon < -180 || lon > 360) {
		p.errorf("longitude %g outside [-180, 360]", lon)
	}
	if res, ok := vars.scalars["horizontal_resolution"]; ok && (res <= 0 || res > 1000) {
		p.errorf("horizontal_resolution %g km is implausible", res)
	}

	pr := vars.grids["pressure"]
	if len(pr) == 0 {
		p.errorf("no pressure values")
		return p
	}
	first := pr[0]
	for i := 1; i < len(first); i++ {
		if first[i] >= first[i-1] {
			p.errorf("pressure not descending at level %d: %g then %g", i, first[i-1], first[i])
		}
	}
	for _, v := range first {
		if v <= 0 || v > 110000 {
			p.errorf("pressure %g Pa outside (0, 110000]", v)
		}
	}
	for i, row := range pr[1:] {
		for j := range row {
			if row[j] != first[j] {
				p.errorf("pressure coordinate drifts at hour index %d level %d", i+1, j)
				break
			}
		}
	}
	return p
}

// ── Phase 5: Value ranges ──
// Missing values are NaN; everything else must be physically plausible.

type valueRange struct {
	name     string
	min, max float64
}

var surfaceRanges = []valueRange{
	{"sfc_pressure", 40000, 110000},
	{"sfc_pressure_amsl", 80000, 110000},
	{"sfc_temp_2m", 180, 340},
	{"sfc_dewpoint_temp_2m", 180, 340},
	{"sfc_wind_u_10m", -120, 120},
	{"sfc_wind_v_10m", -120, 120},
}

var levelRanges = []valueRange{
	{"temperature", 150, 350},
	{"uwind", -150, 150},
	{"vwind", -150, 150},
	{"wwind", -80, 80},
	{"omega", -60, 60},
	{"rh", 0, 1.5},
	{"q", 0, 0.1},
	{"height", -500, 90000},
}

func checkValueRanges(vars *fileVars) *phase {
	p := &phase{name: "Phase 5: Value ranges"}

	for _, r := range surfaceRanges {
		for i, v := range vars.series[r.name] {
			if bad(float64(v), r.min, r.max) {
				p.errorf("%s at hour index %d: %g outside [%g, %g]", r.name, i, v, r.min, r.max)
			}
		}
	}
	for _, r := range levelRanges {
		for i, row := range vars.grids[r.name] {
			for j, v := range row {
				if bad(float64(v), r.min, r.max) {
					p.errorf("%s at hour index %d level %d: %g outside [%g, %g]", r.name, i, j, v, r.min, r.max)
				}
			}
		}
	}
	return p
}

func bad(v, min, max float64) bool {
	return !math.IsNaN(v) && (v < min || v > max)
}

// ── Helpers ──

func varValues(nc api.Group, name string) (any, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("variable missing: %w", err)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	return v, nil
}

// scalarValue accepts either a bare float32 or a one-element vector, so
// the check does not depend on how the decoder represents scalars.
func scalarValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case []float32:
		if len(x) == 1 {
			return float64(x[0]), true
		}
	case []float64:
		if len(x) == 1 {
			return x[0], true
		}
	}
	return 0, false
}
