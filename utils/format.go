package utils

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatSize renders a byte count for display, e.g. "1.2 MB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(bytes))
}

// FormatRatio renders a compression ratio, e.g. "4.00x". Zero means the
// ratio is unknown.
func FormatRatio(ratio float64) string {
	if ratio <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fx", ratio)
}

// FormatSavings renders how much smaller the compressed result is, as a
// percentage of the original. Returns "-" when sizes are unusable.
func FormatSavings(original, compressed int64) string {
	if original <= 0 || compressed < 0 {
		return "-"
	}
	saved := 100 * float64(original-compressed) / float64(original)
	return fmt.Sprintf("%.0f%%", saved)
}
