package gauge

import "github.com/seenimoa/confgauge/pkg/utils"

// IntegerPercent renders 0.5 as "50%". The standalone renderer uses it.
func IntegerPercent(value float64) string {
	return utils.FormatPercent(value, 0)
}

// DecimalPercent renders 0.5 as "50.0%". The chart plugin uses it.
func DecimalPercent(value float64) string {
	return utils.FormatPercent(value, 1)
}

// PercentFormatter returns a formatter with the given number of decimals.
func PercentFormatter(decimals int) Formatter {
	return func(value float64) string {
		return utils.FormatPercent(value, decimals)
	}
}
