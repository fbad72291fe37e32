package exporter

import (
	"fmt"
	"strconv"
)

// formatValue formats a production value for CSV output with exactly 2
// decimal places so values like 13.4 appear as 13.40.
func formatValue(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatYear formats a year column value.
func formatYear(year int) string {
	return strconv.Itoa(year)
}
