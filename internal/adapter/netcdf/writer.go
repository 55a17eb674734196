// Package netcdf serializes site time series into CF-1.8 NetCDF classic
// product files.
package netcdf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ctessum/cdf"

	"github.com/actris-cloudnet/model-munger/internal/domain"
)

// Writer produces one NetCDF file per site under a fixed directory.
type Writer struct {
	dir     string
	version string
	logger  *slog.Logger
}

// NewWriter creates a writer that puts product files under dir. The
// version string ends up in every file's model_munger_version attribute.
func NewWriter(dir, version string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, version: version, logger: logger}
}

// WriteSite writes the product file for one site and returns its path.
// The file layout is fixed by the series: one time step per profile and
// one level per pressure coordinate entry.
func (w *Writer) WriteSite(series *domain.SiteTimeSeries, date time.Time) (string, error) {
	if len(series.Profiles) == 0 {
		return "", fmt.Errorf("site %s: no profiles to write", series.Site.ID)
	}
	if len(series.Pressures) == 0 {
		return "", fmt.Errorf("site %s: no pressure levels to write", series.Site.ID)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := domain.ProductFilename(date, series.Site.ID)
	path := filepath.Join(w.dir, filename)
	w.logger.Info("writing model file", "file", filename, "site", series.Site.ID)

	h := w.defineHeader(series, date)
	if errs := h.Check(); len(errs) > 0 {
		return "", fmt.Errorf("invalid file header: %w", errs[0])
	}

	ff, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", filename, err)
	}
	defer ff.Close()

	f, err := cdf.Create(ff, h)
	if err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	if err := writeData(f, series); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		return "", fmt.Errorf("finalize %s: %w", filename, err)
	}
	if err := ff.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", filename, err)
	}
	return path, nil
}

func (w *Writer) defineHeader(series *domain.SiteTimeSeries, date time.Time) *cdf.Header {
	h := cdf.NewHeader(
		[]string{"time", "level"},
		[]int{len(series.Profiles), len(series.Pressures)},
	)

	h.AddAttribute("", "Conventions", "CF-1.8")
	h.AddAttribute("", "title", fmt.Sprintf("Model data from %s", series.Site.Name))
	h.AddAttribute("", "location", series.Site.Name)
	h.AddAttribute("", "cloudnet_file_type", "model")
	h.AddAttribute("", "year", strconv.Itoa(date.Year()))
	h.AddAttribute("", "month", fmt.Sprintf("%02d", int(date.Month())))
	h.AddAttribute("", "day", fmt.Sprintf("%02d", date.Day()))
	h.AddAttribute("", "source", "ECMWF open data")
	h.AddAttribute("", "model_munger_version", w.version)

	h.AddVariable("time", []string{"time"}, []float32{0})
	h.AddAttribute("time", "long_name", "Hours UTC")
	h.AddAttribute("time", "units", fmt.Sprintf("hours since %s 00:00:00 +00:00", date.Format("2006-01-02")))
	h.AddAttribute("time", "standard_name", "time")
	h.AddAttribute("time", "axis", "T")
	h.AddAttribute("time", "calendar", "standard")

	for i := range productVars {
		spec := &productVars[i]
		h.AddVariable(spec.name, spec.dims(), []float32{0})
		h.AddAttribute(spec.name, "units", spec.units)
		h.AddAttribute(spec.name, "long_name", spec.longName)
		if spec.standardName != "" {
			h.AddAttribute(spec.name, "standard_name", spec.standardName)
		}
		if spec.comment != "" {
			h.AddAttribute(spec.name, "comment", spec.comment)
		}
	}

	h.Define()
	return h
}

func writeData(f *cdf.File, series *domain.SiteTimeSeries) error {
	if err := writeVar(f, "time", toFloat32(series.Hours())); err != nil {
		return err
	}
	for i := range productVars {
		spec := &productVars[i]
		var values []float32
		switch spec.kind {
		case scalarVar:
			values = []float32{float32(spec.scalar(series))}
		case surfaceVar:
			values = make([]float32, len(series.Profiles))
			for j, p := range series.Profiles {
				values[j] = float32(spec.surface(p))
			}
		case levelVar:
			var err error
			values, err = flattenLevels(series, spec)
			if err != nil {
				return err
			}
		}
		if err := writeVar(f, spec.name, values); err != nil {
			return err
		}
	}
	return nil
}

// flattenLevels lays the (time, level) values of one variable out in row
// major order, as the file stores them.
func flattenLevels(series *domain.SiteTimeSeries, spec *varSpec) ([]float32, error) {
	nl := len(series.Pressures)
	out := make([]float32, 0, len(series.Profiles)*nl)
	for _, p := range series.Profiles {
		row := spec.levels(p)
		if len(row) != nl {
			return nil, fmt.Errorf("variable %s has %d levels at hour %g, want %d", spec.name, len(row), p.Hour, nl)
		}
		for _, v := range row {
			out = append(out, float32(v))
		}
	}
	return out, nil
}

// writeVar fills a fixed-size variable end to end. The library reports
// io.EOF when a write lands exactly on the end of the variable, so that
// is only an error for short writes.
func writeVar(f *cdf.File, name string, values []float32) error {
	n, err := f.Writer(name, nil, nil).Write(values)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(values)) {
		return fmt.Errorf("variable %s: %w", name, err)
	}
	if n != len(values) {
		return fmt.Errorf("variable %s: wrote %d of %d values", name, n, len(values))
	}
	return nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
