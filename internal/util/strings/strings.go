// Package strings provides string utility functions.
package strings

import (
	"fmt"
)

// Pluralize returns singular or plural form based on count.
// Example: Pluralize("file", 1) returns "file", Pluralize("file", 2) returns "files"
func Pluralize(word string, count int64) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// FormatSize renders a byte count with a decimal unit, matching the sizes
// the carver server reports (KB = 1000 bytes). Negative counts mean the
// size is unknown.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "unknown"
	}
	const unit = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	value := float64(bytes)
	units := []string{"KB", "MB", "GB", "TB"}
	idx := -1
	for value >= unit && idx < len(units)-1 {
		value /= unit
		idx++
	}
	return fmt.Sprintf("%.2f %s", value, units[idx])
}

// FormatRate renders a transfer speed in bytes per second.
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 {
		return "0 B/s"
	}
	return FormatSize(int64(bytesPerSecond)) + "/s"
}

// FormatGiB renders a byte count in binary gibibytes with two decimals,
// the convention used for device capacities.
func FormatGiB(bytes int64) string {
	if bytes <= 0 {
		return "size unknown"
	}
	return fmt.Sprintf("%.2f GiB", float64(bytes)/(1024*1024*1024))
}
