package intake

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMapsDottedFormKeys(t *testing.T) {
	p := NewParser(DefaultFieldMap())

	booking := p.Parse(map[string]interface{}{
		"inputs.names.first_name": "Dana",
		"labels.phone":            "15559999",
		"inputs.dropdown":         "deep tissue",
		"inputs.datetime":         "2026-09-01",
		"city":                    "Austin",
		"special_requests":        "ground floor please",
	})

	assert.Equal(t, "Dana", booking.ClientName)
	assert.Equal(t, "15559999", booking.ClientPhone)
	assert.Equal(t, "deep tissue", booking.ServiceType)
	assert.Equal(t, "2026-09-01", booking.Date)
	assert.Equal(t, "Austin", booking.City)
	assert.Equal(t, "ground floor please", booking.Notes)
}

func TestParseUsesFallbackKeys(t *testing.T) {
	p := NewParser(DefaultFieldMap())

	booking := p.Parse(map[string]interface{}{
		"full_name":    "Dana",
		"phone_number": "15559999",
		"location":     "Austin",
	})

	assert.Equal(t, "Dana", booking.ClientName)
	assert.Equal(t, "15559999", booking.ClientPhone)
	assert.Equal(t, "Austin", booking.City)
}

func TestParseFirstKeyWins(t *testing.T) {
	p := NewParser(DefaultFieldMap())

	booking := p.Parse(map[string]interface{}{
		"city":     "Austin",
		"location": "Dallas",
	})

	assert.Equal(t, "Austin", booking.City)
}

func TestParseMissingFieldsStayEmpty(t *testing.T) {
	p := NewParser(DefaultFieldMap())
	booking := p.Parse(map[string]interface{}{})
	assert.Empty(t, booking.City)
	assert.Empty(t, booking.ClientName)
}

func TestParseSkipsNonStringValues(t *testing.T) {
	p := NewParser(DefaultFieldMap())

	booking := p.Parse(map[string]interface{}{
		"city":     map[string]interface{}{"nested": "Austin"},
		"location": "Dallas",
	})

	assert.Equal(t, "Dallas", booking.City, "non-string value falls through to the next key")
}

func TestLoadFieldMapOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	content := "city:\n  - town\n  - municipality\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	fm, err := LoadFieldMap(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"town", "municipality"}, fm.City)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultFieldMap().ClientName, fm.ClientName)
}

func TestLoadFieldMapMissingFile(t *testing.T) {
	_, err := LoadFieldMap(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
