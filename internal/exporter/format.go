package exporter

import (
	"fmt"
	"math"
	"strconv"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	// Always format with exactly 2 decimal places for consistency
	// This ensures values like 13.4 appear as 13.40 in CSV
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatOptionalFloat renders NaN as an empty cell. Finite values use
// the shortest exact representation so whole-dollar budget columns
// round-trip without a trailing ".00".
func formatOptionalFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatOptionalInt renders the zero "missing" marker as an empty cell
func formatOptionalInt(i int) string {
	if i == 0 {
		return ""
	}
	return strconv.Itoa(i)
}
