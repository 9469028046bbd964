package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"whole number", 13.0, "13.00"},
		{"one decimal", 13.4, "13.40"},
		{"two decimals", 13.45, "13.45"},
		{"rounds beyond two decimals", 13.456, "13.46"},
		{"zero", 0, "0.00"},
		{"negative", -2.5, "-2.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "0", formatInt(0))
	assert.Equal(t, "1794", formatInt(1794))
	assert.Equal(t, "-3", formatInt(-3))
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "true", formatBool(true))
	assert.Equal(t, "false", formatBool(false))
}

func TestFormatOptionalFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"missing value", math.NaN(), ""},
		{"whole budget keeps no decimal point", 13000000, "13000000"},
		{"fractional value keeps exact digits", 5.9, "5.9"},
		{"zero", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatOptionalFloat(tt.input))
		})
	}
}

func TestFormatOptionalInt(t *testing.T) {
	assert.Equal(t, "", formatOptionalInt(0))
	assert.Equal(t, "2", formatOptionalInt(2))
}
