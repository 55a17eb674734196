// Package cloudnet talks to the Cloudnet data portal API: it lists the
// measurement sites to process and submits finished model files to the
// archive.
package cloudnet

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/actris-cloudnet/model-munger/internal/domain"
)

// Client implements site lookup and model file submission against the
// Cloudnet data portal.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a data portal client.
func NewClient(baseURL, username, password string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// GetSites returns every cloudnet site that has coordinates. Sites without
// coordinates cannot be located on the model grid and are dropped.
func (c *Client) GetSites(ctx context.Context) ([]domain.Site, error) {
	params := url.Values{
		"type": {"cloudnet"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/sites?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cloudnet API error: status %d: %s", resp.StatusCode, body)
	}

	var records []siteRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode sites: %w", err)
	}

	var sites []domain.Site
	for _, rec := range records {
		if rec.Latitude == nil || rec.Longitude == nil {
			continue
		}
		sites = append(sites, domain.Site{
			ID:        rec.ID,
			Name:      rec.Name,
			Latitude:  *rec.Latitude,
			Longitude: *rec.Longitude,
		})
	}
	return sites, nil
}

// Submit registers a model file with the archive and uploads its body.
// The archive keys submissions on the file's MD5 checksum; a conflict on
// the metadata step means the file is already there and the body upload
// is skipped.
func (c *Client) Submit(ctx context.Context, path string, site domain.Site, date time.Time) (*domain.Submission, error) {
	checksum, err := fileChecksum(path)
	if err != nil {
		return nil, err
	}

	c.logger.Info("submitting model file",
		"file", filepath.Base(path),
		"site", site.ID,
		"checksum", checksum)

	payload := metadataPayload{
		MeasurementDate: date.Format("2006-01-02"),
		Model:           domain.ModelID,
		Filename:        filepath.Base(path),
		Checksum:        checksum,
		Site:            site.ID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/model-upload/metadata/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		c.logger.Info("file already in archive", "file", filepath.Base(path), "site", site.ID)
		return &domain.Submission{Checksum: checksum, Duplicate: true}, nil
	}
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cloudnet API error: status %d: %s", resp.StatusCode, respBody)
	}

	if err := c.uploadData(ctx, path, checksum); err != nil {
		return nil, err
	}
	return &domain.Submission{Checksum: checksum}, nil
}

// uploadData streams the file body to the archive under its checksum.
func (c *Client) uploadData(ctx context.Context, path, checksum string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat model file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/model-upload/data/"+checksum, f)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = fi.Size()
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cloudnet API error: status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

// fileChecksum returns the hex MD5 digest of the file at path.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum model file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Data portal request and response types.

type metadataPayload struct {
	MeasurementDate string `json:"measurementDate"`
	Model           string `json:"model"`
	Filename        string `json:"filename"`
	Checksum        string `json:"checksum"`
	Site            string `json:"site"`
}

type siteRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"humanReadableName"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}
