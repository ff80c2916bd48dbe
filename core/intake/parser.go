package intake

import (
	"fmt"
	"os"

	"booking-dispatcher/core/models"

	"gopkg.in/yaml.v3"
)

// FieldMap maps each booking field to the form keys it may arrive under, in
// priority order. Form builders name fields freely, so every field carries a
// list of fallbacks.
type FieldMap struct {
	ClientName  []string `yaml:"client_name"`
	ClientPhone []string `yaml:"client_phone"`
	ServiceType []string `yaml:"service_type"`
	Date        []string `yaml:"date"`
	Time        []string `yaml:"time"`
	Duration    []string `yaml:"duration"`
	City        []string `yaml:"city"`
	Notes       []string `yaml:"notes"`
}

// DefaultFieldMap returns the mapping for a stock Fluent Forms booking form
func DefaultFieldMap() FieldMap {
	return FieldMap{
		ClientName:  []string{"inputs.names.first_name", "name", "full_name"},
		ClientPhone: []string{"labels.phone", "phone", "phone_number"},
		ServiceType: []string{"inputs.dropdown", "massage_type", "service_type"},
		Date:        []string{"inputs.datetime", "date", "appointment_date"},
		Time:        []string{"time", "appointment_time", "time_slot"},
		Duration:    []string{"duration", "session_length", "time_duration"},
		City:        []string{"city", "location", "address.city"},
		Notes:       []string{"special_requests", "notes", "message"},
	}
}

// LoadFieldMap reads a field mapping from a YAML file. Fields left out of
// the file keep their default key lists.
func LoadFieldMap(path string) (FieldMap, error) {
	fm := DefaultFieldMap()

	data, err := os.ReadFile(path)
	if err != nil {
		return fm, err
	}
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return fm, fmt.Errorf("intake: invalid field map %s: %w", path, err)
	}
	return fm, nil
}

// Parser extracts booking details from a form webhook payload
type Parser struct {
	fields FieldMap
}

// NewParser creates a parser with the given field mapping
func NewParser(fields FieldMap) *Parser {
	return &Parser{fields: fields}
}

// Parse maps the webhook's response section onto BookingDetails. Keys are
// looked up literally, including dotted names, which is how Fluent Forms
// flattens nested inputs. Missing fields stay empty; the dispatch engine
// passes them through without validating.
func (p *Parser) Parse(response map[string]interface{}) models.BookingDetails {
	return models.BookingDetails{
		ClientName:  firstValue(response, p.fields.ClientName),
		ClientPhone: firstValue(response, p.fields.ClientPhone),
		ServiceType: firstValue(response, p.fields.ServiceType),
		Date:        firstValue(response, p.fields.Date),
		Time:        firstValue(response, p.fields.Time),
		Duration:    firstValue(response, p.fields.Duration),
		City:        firstValue(response, p.fields.City),
		Notes:       firstValue(response, p.fields.Notes),
	}
}

func firstValue(response map[string]interface{}, keys []string) string {
	for _, key := range keys {
		v, ok := response[key]
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			return s
		case fmt.Stringer:
			return s.String()
		case float64:
			return fmt.Sprintf("%v", s)
		}
	}
	return ""
}
