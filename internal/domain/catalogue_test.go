package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCatalogue(t *testing.T) {
	c := DefaultCatalogue()

	for _, code := range []string{"10u", "10v", "2d", "2t", "gh", "msl", "q", "sp", "st", "t", "u", "v", "w"} {
		assert.True(t, c.Recognizes(code), "code %s", code)
	}
	assert.False(t, c.Recognizes("skt"))
	assert.False(t, c.Recognizes(""))

	assert.Equal(t, "K", c.Unit("t"))
	assert.Equal(t, "Pa s**-1", c.Unit("w"))
	assert.Equal(t, "kg kg**-1", c.Unit("q"))

	assert.Equal(t, "temperature", c.Name("t"))
	assert.Equal(t, "sfc_wind_u_10m", c.Name("10u"))
	assert.Equal(t, "_gh", c.Name("gh"))
}

func TestNewCatalogueDropsOneSidedCodes(t *testing.T) {
	c := NewCatalogue(
		map[string]string{"t": "K", "orphanUnit": "m"},
		map[string]string{"t": "temperature", "orphanName": "thing"},
	)

	assert.True(t, c.Recognizes("t"))
	assert.False(t, c.Recognizes("orphanUnit"))
	assert.False(t, c.Recognizes("orphanName"))
}

func TestCatalogueCopiesInputs(t *testing.T) {
	units := map[string]string{"t": "K"}
	names := map[string]string{"t": "temperature"}
	c := NewCatalogue(units, names)

	units["t"] = "C"
	names["t"] = "mangled"

	assert.Equal(t, "K", c.Unit("t"))
	assert.Equal(t, "temperature", c.Name("t"))
}
