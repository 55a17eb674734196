package ecmwf

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actris-cloudnet/model-munger/internal/observability"
)

var testDate = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func testDownloader(baseURL, dir string) *Downloader {
	return &Downloader{
		baseURL:    baseURL,
		dir:        dir,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		retries:    3,
		retryWait:  time.Millisecond,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// recordingServer serves "payload" for every request and records the
// request paths in order.
func recordingServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		_, _ = w.Write([]byte("payload"))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), paths...)
	}
}

func TestDownload_FullRun(t *testing.T) {
	srv, requested := recordingServer(t)
	dir := t.TempDir()

	d := testDownloader(srv.URL, dir)
	paths, err := d.Download(context.Background(), testDate, 0)
	require.NoError(t, err)

	require.Len(t, paths, 9)
	assert.Equal(t, filepath.Join(dir, "20250314000000-0h-oper-fc.grib2"), paths[0])
	assert.Equal(t, filepath.Join(dir, "20250314000000-24h-oper-fc.grib2"), paths[8])

	got := requested()
	require.Len(t, got, 9)
	assert.Equal(t, "/20250314/00z/ifs/0p25/oper/20250314000000-0h-oper-fc.grib2", got[0])
	assert.Equal(t, "/20250314/00z/ifs/0p25/oper/20250314000000-3h-oper-fc.grib2", got[1])
	assert.Equal(t, "/20250314/00z/ifs/0p25/oper/20250314000000-24h-oper-fc.grib2", got[8])

	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	}
}

func TestDownload_ScdaStream(t *testing.T) {
	srv, requested := recordingServer(t)
	dir := t.TempDir()

	d := testDownloader(srv.URL, dir)
	paths, err := d.Download(context.Background(), testDate, 6)
	require.NoError(t, err)

	// Lead hours 6..24 for the 06 UTC run.
	require.Len(t, paths, 7)
	got := requested()
	require.Len(t, got, 7)
	assert.Equal(t, "/20250314/06z/ifs/0p25/scda/20250314060000-6h-scda-fc.grib2", got[0])
	assert.Equal(t, "/20250314/06z/ifs/0p25/scda/20250314060000-24h-scda-fc.grib2", got[6])
}

func TestDownload_SkipsExisting(t *testing.T) {
	srv, requested := recordingServer(t)
	dir := t.TempDir()

	existing := filepath.Join(dir, "20250314000000-6h-oper-fc.grib2")
	require.NoError(t, os.WriteFile(existing, []byte("cached"), 0o644))

	d := testDownloader(srv.URL, dir)
	paths, err := d.Download(context.Background(), testDate, 0)
	require.NoError(t, err)

	require.Len(t, paths, 9)
	assert.Len(t, requested(), 8)

	// The cached file is kept as is and still listed in hour order.
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "cached", string(data))
	assert.Equal(t, existing, paths[2])
}

func TestDownload_ClientErrorIsPermanent(t *testing.T) {
	var (
		mu       sync.Mutex
		requests int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := testDownloader(srv.URL, dir)
	_, err := d.Download(context.Background(), testDate, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	mu.Lock()
	assert.Equal(t, 1, requests)
	mu.Unlock()

	// No partial files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownload_RetriesServerError(t *testing.T) {
	var (
		mu       sync.Mutex
		requests int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		requests++
		n := requests
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := testDownloader(srv.URL, dir)
	paths, err := d.Download(context.Background(), testDate, 0)
	require.NoError(t, err)
	assert.Len(t, paths, 9)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, requests)
}

func TestDownload_RetriesExhausted(t *testing.T) {
	var (
		mu       sync.Mutex
		requests int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := testDownloader(srv.URL, t.TempDir())
	d.retries = 2
	_, err := d.Download(context.Background(), testDate, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, requests)
}

func TestDownload_UnsupportedRun(t *testing.T) {
	d := testDownloader("http://unused.invalid", t.TempDir())
	_, err := d.Download(context.Background(), testDate, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported model run")
}
