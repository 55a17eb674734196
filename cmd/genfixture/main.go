// Command genfixture generates a deterministic sample model product for
// manual inspection and test fixtures. It assembles synthetic forecast
// snapshots with the real catalogue and assembler, then writes one NetCDF
// product and one JSON time series dump per site.
//
// Usage:
//
//	go run ./cmd/genfixture -out-dir data/fixture
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/actris-cloudnet/model-munger/internal/adapter/netcdf"
	"github.com/actris-cloudnet/model-munger/internal/domain"
)

var fixtureDate = time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "data/fixture", "directory for the generated files")
	flag.Parse()

	// Freeze the clock for reproducible produced_at timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.March, 14, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	grid := fixtureGrid()
	sites := []domain.Site{
		{ID: "hyytiala", Name: "Hyytiälä", Latitude: 61.844, Longitude: 24.287},
		{ID: "vehmasmaki", Name: "Vehmasmäki", Latitude: 62.738, Longitude: 27.543},
	}

	assembler := domain.NewAssembler(domain.DefaultCatalogue(), fixtureDate, sites)
	for hour := 0; hour <= 24; hour += domain.LeadStepHours {
		if err := assembler.ProcessSnapshot(snapshot(hour, grid)); err != nil {
			return fmt.Errorf("assemble %dh: %w", hour, err)
		}
	}

	writer := netcdf.NewWriter(*outDir, "fixture", slog.New(slog.NewTextHandler(os.Stderr, nil)))
	series := assembler.Series()
	for _, s := range series {
		path, err := writer.WriteSite(s, fixtureDate)
		if err != nil {
			return fmt.Errorf("write %s: %w", s.Site.ID, err)
		}
		log.Printf("wrote %s", path)

		dump := filepath.Join(*outDir, s.Site.ID+".json")
		if err := writeJSON(dump, s); err != nil {
			return fmt.Errorf("dump %s: %w", s.Site.ID, err)
		}
		log.Printf("wrote %s", dump)
	}

	printSummary(series)
	return nil
}

// fixtureGrid covers southern and central Finland at the native 0.25
// degree resolution, enough to place both fixture sites.
func fixtureGrid() *domain.GridAxes {
	var lats, lons []float64
	for lat := 63.0; lat >= 61.0; lat -= 0.25 {
		lats = append(lats, lat)
	}
	for lon := 24.0; lon <= 28.0; lon += 0.25 {
		lons = append(lons, lon)
	}
	return &domain.GridAxes{
		Type:       domain.GridRegularLL,
		Latitudes:  lats,
		Longitudes: lons,
	}
}

// snapshot builds one lead hour's worth of synthetic fields. Values carry
// a gentle south-north and west-east gradient plus a diurnal cycle, so
// neighbouring gridpoints and hours stay distinguishable in the output.
func snapshot(hour int, grid *domain.GridAxes) *domain.Snapshot {
	f := func(code string, levelType domain.LevelType, level float64, units string, base, amp float64) domain.GriddedField {
		diurnal := amp * math.Sin(2*math.Pi*float64(hour)/24)
		values := make([][]float64, len(grid.Latitudes))
		for i, lat := range grid.Latitudes {
			row := make([]float64, len(grid.Longitudes))
			for j, lon := range grid.Longitudes {
				row[j] = base*(1+0.002*(lat-61)+0.001*(lon-24)) + diurnal
			}
			values[i] = row
		}
		return domain.GriddedField{
			Code:      code,
			LevelType: levelType,
			Level:     level,
			Units:     units,
			RefDate:   fixtureDate,
			LeadHour:  hour,
			Values:    values,
			Grid:      grid,
		}
	}

	fields := []domain.GriddedField{
		f("sp", domain.LevelSurface, 0, "Pa", 100800, 120),
		f("msl", domain.LevelMeanSea, 0, "Pa", 101300, 120),
		f("2t", domain.LevelHeightAboveGround, 2, "K", 281, 4),
		f("2d", domain.LevelHeightAboveGround, 2, "K", 277, 3),
		f("10u", domain.LevelHeightAboveGround, 10, "m s**-1", 3.5, 1.5),
		f("10v", domain.LevelHeightAboveGround, 10, "m s**-1", -1.2, 1),
		f("st", domain.LevelDepthBelowLandLayer, 0, "K", 279.5, 0.5),
	}

	levels := []struct {
		p, t, gh, q, u, v, w float64
	}{
		{1000, 283.5, 120, 0.0062, 4, -1, 0.02},
		{925, 280.0, 760, 0.0051, 7, 1, 0.05},
		{850, 276.5, 1440, 0.0042, 10, 2, -0.04},
		{700, 268.0, 3010, 0.0021, 14, 4, 0.08},
		{500, 251.5, 5560, 0.0008, 21, 6, -0.06},
		{300, 228.0, 9140, 0.0001, 30, 8, 0.03},
	}
	for _, l := range levels {
		fields = append(fields,
			f("t", domain.LevelIsobaricHPa, l.p, "K", l.t, 1.5),
			f("gh", domain.LevelIsobaricHPa, l.p, "gpm", l.gh, 15),
			f("q", domain.LevelIsobaricHPa, l.p, "kg kg**-1", l.q, l.q*0.05),
			f("u", domain.LevelIsobaricHPa, l.p, "m s**-1", l.u, 2),
			f("v", domain.LevelIsobaricHPa, l.p, "m s**-1", l.v, 2),
			f("w", domain.LevelIsobaricHPa, l.p, "Pa s**-1", l.w, 0.05),
		)
	}

	return &domain.Snapshot{
		Source: fmt.Sprintf("synthetic-%02dh", hour),
		Fields: fields,
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printSummary(series []*domain.SiteTimeSeries) {
	fmt.Println("\n=== Fixture summary ===")
	for _, s := range series {
		fmt.Printf("%s: gridpoint (%.2f, %.2f), %d hours, %d levels\n",
			s.Site.ID, s.Latitude, s.Longitude, len(s.Profiles), len(s.Pressures))
		if len(s.Profiles) == 0 {
			continue
		}
		first, last := s.Profiles[0], s.Profiles[len(s.Profiles)-1]
		fmt.Printf("  2m temperature: %.2f K at 0h, %.2f K at %gh\n",
			first.SfcTemp2m, last.SfcTemp2m, last.Hour)
		fmt.Printf("  1000 hPa height: %.1f m, relative humidity: %.1f %%\n",
			first.Height[0], first.RH[0]*100)
	}
}
