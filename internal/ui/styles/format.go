// Package styles contains Lip Gloss style definitions.
package styles

import (
	"fmt"
	"math"
)

// FormatDelta renders a signed percentage change with a direction arrow.
// Returns empty string when the change is zero.
func FormatDelta(pct float64) string {
	switch {
	case pct > 0:
		return fmt.Sprintf("▲ %.1f%%", pct)
	case pct < 0:
		return fmt.Sprintf("▼ %.1f%%", math.Abs(pct))
	default:
		return ""
	}
}

// FormatCount renders an integer metric compactly: 950, 1.2k, 3.4M.
func FormatCount(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", n/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", n/1_000)
	default:
		return fmt.Sprintf("%.0f", n)
	}
}

// Formatcurrency renders a dollar amount with thousands kept readable.
func FormatCurrency(amount float64) string {
	if math.Abs(amount) >= 1_000 {
		return fmt.Sprintf("$%.1fk", amount/1_000)
	}
	return fmt.Sprintf("$%.0f", amount)
}

// FormatStepIndicator renders a "Step 2/6" style progress label.
func FormatStepIndicator(current, total int) string {
	return fmt.Sprintf("Step %d/%d", current, total)
}
