package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actris-cloudnet/model-munger/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	event := domain.ProductEvent{
		SiteID:          "bucharest",
		Model:           "ecmwf-open",
		MeasurementDate: "2025-03-14",
		Filename:        "20250314_bucharest_ecmwf-open.nc",
		Checksum:        "d41d8cd98f00b204e9800998ecf8427e",
		Submitted:       true,
		ProducedAt:      now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("bucharest"), msg.Key)
	assert.Contains(t, string(msg.Value), `"model":"ecmwf-open"`)
	assert.Contains(t, string(msg.Value), `"filename":"20250314_bucharest_ecmwf-open.nc"`)
	assert.Contains(t, string(msg.Value), `"submitted":true`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "site", msg.Headers[0].Key)
	assert.Equal(t, []byte("bucharest"), msg.Headers[0].Value)
	assert.Equal(t, "measurement_date", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-03-14"), msg.Headers[1].Value)
}

func TestSerializeToMessage_OmitsEmptyChecksum(t *testing.T) {
	event := domain.ProductEvent{
		SiteID:          "bucharest",
		Model:           "ecmwf-open",
		MeasurementDate: "2025-03-14",
		Filename:        "20250314_bucharest_ecmwf-open.nc",
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)
	assert.NotContains(t, string(msg.Value), "checksum")
}
