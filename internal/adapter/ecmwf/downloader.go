// Package ecmwf downloads IFS open-data forecast files from the ECMWF
// dissemination service.
package ecmwf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/actris-cloudnet/model-munger/internal/observability"
)

// Downloader fetches the forecast files of one model run over HTTP and
// stores them in a local directory.
type Downloader struct {
	baseURL    string
	dir        string
	httpClient *http.Client
	retries    int
	retryWait  time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewDownloader creates a downloader that stores files under dir.
func NewDownloader(baseURL, dir string, timeout time.Duration, retries int, metrics *observability.Metrics, logger *slog.Logger) *Downloader {
	return &Downloader{
		baseURL: baseURL,
		dir:     dir,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retries:   retries,
		retryWait: 500 * time.Millisecond,
		metrics:   metrics,
		logger:    logger,
	}
}

// Download fetches every forecast file of the given date and model run
// and returns the local paths in forecast hour order. Lead hours go from
// the run hour to 24 in steps of three, and files already on disk are
// not fetched again.
func (d *Downloader) Download(ctx context.Context, date time.Time, run int) ([]string, error) {
	stream, err := streamFor(run)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	dateStr := date.Format("20060102")
	var paths []string
	for hour := run; hour <= 24; hour += 3 {
		name := fmt.Sprintf("%s%02d0000-%dh-%s-fc.grib2", dateStr, run, hour, stream)
		path := filepath.Join(d.dir, name)
		paths = append(paths, path)

		if _, err := os.Stat(path); err == nil {
			d.logger.Info("forecast file already on disk", "file", name)
			continue
		}

		url := fmt.Sprintf("%s/%s/%02dz/ifs/0p25/%s/%s", d.baseURL, dateStr, run, stream, name)
		if err := d.fetch(ctx, url, path); err != nil {
			return nil, fmt.Errorf("download %s: %w", name, err)
		}
	}
	return paths, nil
}

// streamFor maps a model run hour to its dissemination stream.
func streamFor(run int) (string, error) {
	switch run {
	case 0, 12:
		return "oper", nil
	case 6, 18:
		return "scda", nil
	default:
		return "", fmt.Errorf("unsupported model run %02d", run)
	}
}

// fetch downloads one file, retrying transient failures (5xx, network
// errors) with exponential backoff. Client errors are permanent.
func (d *Downloader) fetch(ctx context.Context, url, path string) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.retryWait
	bo.MaxElapsedTime = 0

	operation := func() error {
		start := time.Now()
		d.logger.Info("downloading forecast file", "url", url)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		resp, err := d.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("status %d", resp.StatusCode)
			if resp.StatusCode >= 500 {
				return err
			}
			return backoff.Permanent(err)
		}

		n, err := writeFile(path, resp.Body)
		if err != nil {
			return err
		}
		d.metrics.FilesDownloaded.Inc()
		d.metrics.DownloadBytes.Add(float64(n))
		d.metrics.DownloadDuration.Observe(time.Since(start).Seconds())
		d.logger.Info("forecast file downloaded",
			"file", filepath.Base(path),
			"bytes", n,
			"duration", time.Since(start))
		return nil
	}

	boWithRetries := backoff.WithMaxRetries(bo, uint64(d.retries))
	return backoff.Retry(operation, backoff.WithContext(boWithRetries, ctx))
}

// writeFile streams body into a temporary file and renames it into place,
// so the final name never points at a partial download.
func writeFile(path string, body io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".part-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("rename temp file: %w", err)
	}
	return n, nil
}
