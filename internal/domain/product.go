package domain

import (
	"fmt"
	"time"
)

// ModelID identifies the forecast product in output filenames and upload
// metadata.
const ModelID = "ecmwf-open"

// ProductFilename is the canonical output name for one site and run date.
func ProductFilename(date time.Time, siteID string) string {
	return fmt.Sprintf("%s_%s_%s.nc", date.Format("20060102"), siteID, ModelID)
}

// Submission is the outcome of delivering a product file to the data
// portal. Duplicate means the portal already held a file with the same
// checksum and the upload was skipped.
type Submission struct {
	Checksum  string
	Duplicate bool
}

// ProductEvent announces one finished model product: a profile file that
// was written and, when submission is enabled, delivered to the data
// portal. Events are keyed by site so one site's products stay ordered.
type ProductEvent struct {
	SiteID          string    `json:"site_id"`
	Model           string    `json:"model"`
	MeasurementDate string    `json:"measurement_date"`
	Filename        string    `json:"filename"`
	Checksum        string    `json:"checksum,omitempty"`
	Submitted       bool      `json:"submitted"`
	ProducedAt      time.Time `json:"produced_at"`
}

// NewProductEvent stamps a product announcement with the current time.
func NewProductEvent(siteID string, date time.Time, filename, checksum string, submitted bool) ProductEvent {
	return ProductEvent{
		SiteID:          siteID,
		Model:           ModelID,
		MeasurementDate: date.Format("2006-01-02"),
		Filename:        filename,
		Checksum:        checksum,
		Submitted:       submitted,
		ProducedAt:      clock.Now().UTC(),
	}
}
