package grib

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/mmp/squall"

	"github.com/actris-cloudnet/model-munger/internal/domain"
)

// missingThreshold marks gridpoints the producer left unset; the decoder
// reports them as values above 9e20.
const missingThreshold = 9e20

// Reader decodes ECMWF open-data GRIB2 files into domain snapshots.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// ReadSnapshot decodes one forecast file. Parameters outside the profile
// vocabulary are dropped. Everything else is reshaped onto its grid and
// stamped with the reference time and lead hour read from the message
// envelopes, which the payload decoder does not expose.
func (r *Reader) ReadSnapshot(path string) (*domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	metas, err := scanMessages(f)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}
	records, err := squall.Read(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	// Records and envelope entries are parallel: one per field, in file
	// order. Pairing them up is how each record gets its time and grid.
	if len(records) != len(metas) {
		return nil, fmt.Errorf("decode %s: %d records for %d envelope entries", path, len(records), len(metas))
	}

	snapshot := &domain.Snapshot{Source: path}
	var lastAxes *domain.GridAxes
	for i, rec := range records {
		code, levelType, units, ok := classify(rec.Parameter.ShortName(), rec.Level)
		if !ok {
			r.logger.Debug("skipping parameter",
				"file", path, "parameter", rec.Parameter.ShortName(), "level", rec.Level)
			continue
		}
		axes, values, err := reshape(rec.Latitudes, rec.Longitudes, rec.Data)
		if err != nil {
			return nil, fmt.Errorf("decode %s %s (%s grid): %w", path, code, metas[i].gridType, err)
		}
		axes.Type = metas[i].gridType
		if lastAxes != nil && axesEqual(lastAxes, axes) {
			axes = lastAxes
		} else {
			lastAxes = axes
		}
		snapshot.Fields = append(snapshot.Fields, domain.GriddedField{
			Code:      code,
			LevelType: levelType,
			Level:     float64(rec.LevelValue),
			Units:     units,
			RefDate:   metas[i].refTime,
			LeadHour:  metas[i].leadHour,
			Values:    values,
			Grid:      axes,
		})
	}
	r.logger.Debug("decoded snapshot", "file", path, "records", len(records), "fields", len(snapshot.Fields))
	return snapshot, nil
}

// classify maps the decoder's NCEP-style parameter name and level string
// onto the ECMWF short code vocabulary. Parameters and levels outside the
// profile set report ok false.
func classify(shortName, level string) (code string, levelType domain.LevelType, units string, ok bool) {
	isobaric := strings.HasSuffix(level, " mb")
	switch shortName {
	case "UGRD":
		if isobaric {
			return "u", domain.LevelIsobaricHPa, "m s**-1", true
		}
		if level == "10 m above ground" {
			return "10u", domain.LevelHeightAboveGround, "m s**-1", true
		}
	case "VGRD":
		if isobaric {
			return "v", domain.LevelIsobaricHPa, "m s**-1", true
		}
		if level == "10 m above ground" {
			return "10v", domain.LevelHeightAboveGround, "m s**-1", true
		}
	case "TMP":
		if isobaric {
			return "t", domain.LevelIsobaricHPa, "K", true
		}
		if level == "2 m above ground" {
			return "2t", domain.LevelHeightAboveGround, "K", true
		}
	case "DPT":
		if level == "2 m above ground" {
			return "2d", domain.LevelHeightAboveGround, "K", true
		}
	case "HGT":
		if isobaric {
			return "gh", domain.LevelIsobaricHPa, "gpm", true
		}
	case "SPFH":
		if isobaric {
			return "q", domain.LevelIsobaricHPa, "kg kg**-1", true
		}
	case "VVEL":
		if isobaric {
			return "w", domain.LevelIsobaricHPa, "Pa s**-1", true
		}
	case "PRMSL":
		if level == "mean sea level" {
			return "msl", domain.LevelMeanSea, "Pa", true
		}
	case "PRES":
		if level == "surface" {
			return "sp", domain.LevelSurface, "Pa", true
		}
	case "TSOIL":
		if strings.Contains(level, "below ground") {
			return "st", domain.LevelDepthBelowLandLayer, "K", true
		}
	}
	return "", "", "", false
}

// reshape splits the decoder's parallel point arrays into a regular
// row-major grid. A new row starts where the latitude stream changes;
// quasi-regular grids with varying row lengths are rejected.
func reshape(latitudes, longitudes, data []float32) (*domain.GridAxes, [][]float64, error) {
	n := len(data)
	if n == 0 || len(latitudes) != n || len(longitudes) != n {
		return nil, nil, fmt.Errorf("inconsistent point arrays: %d values, %d latitudes, %d longitudes",
			n, len(latitudes), len(longitudes))
	}
	rowLen := 0
	for rowLen < n && latitudes[rowLen] == latitudes[0] {
		rowLen++
	}
	if n%rowLen != 0 {
		return nil, nil, fmt.Errorf("%d points do not divide into rows of %d", n, rowLen)
	}
	rows := n / rowLen

	axes := &domain.GridAxes{
		Latitudes:  make([]float64, rows),
		Longitudes: make([]float64, rowLen),
	}
	for c := range axes.Longitudes {
		axes.Longitudes[c] = normalizeLon(longitudes[c])
	}
	for row := range axes.Latitudes {
		axes.Latitudes[row] = float64(latitudes[row*rowLen])
	}
	// Every point must sit exactly where the axes say it does. Rows of
	// unequal length surface here as axis mismatches.
	for i := 0; i < n; i++ {
		if float64(latitudes[i]) != axes.Latitudes[i/rowLen] || normalizeLon(longitudes[i]) != axes.Longitudes[i%rowLen] {
			return nil, nil, fmt.Errorf("point %d is off the regular grid", i)
		}
	}

	values := make([][]float64, rows)
	for row := range values {
		vals := make([]float64, rowLen)
		for c := range vals {
			v := float64(data[row*rowLen+c])
			if v > missingThreshold {
				v = math.NaN()
			}
			vals[c] = v
		}
		values[row] = vals
	}
	return axes, values, nil
}

func normalizeLon(lon float32) float64 {
	l := float64(lon)
	if l > 180 {
		l -= 360
	}
	return l
}

func axesEqual(a, b *domain.GridAxes) bool {
	return a.Type == b.Type &&
		slices.Equal(a.Latitudes, b.Latitudes) &&
		slices.Equal(a.Longitudes, b.Longitudes)
}
