package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestProductFilename(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "20250314_hyytiala_ecmwf-open.nc", ProductFilename(date, "hyytiala"))
}

func TestToday(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 14, 22, 45, 10, 0, time.UTC)))
	defer SetClock(nil)

	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), Today())
}

func TestNewProductEvent(t *testing.T) {
	fixedTime := time.Date(2025, 3, 14, 12, 30, 45, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	defer SetClock(nil)

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	event := NewProductEvent("hyytiala", date, "20250314_hyytiala_ecmwf-open.nc", "d41d8cd9", true)

	assert.Equal(t, "hyytiala", event.SiteID)
	assert.Equal(t, "ecmwf-open", event.Model)
	assert.Equal(t, "2025-03-14", event.MeasurementDate)
	assert.Equal(t, "20250314_hyytiala_ecmwf-open.nc", event.Filename)
	assert.Equal(t, "d41d8cd9", event.Checksum)
	assert.True(t, event.Submitted)
	assert.Equal(t, fixedTime, event.ProducedAt)
}
