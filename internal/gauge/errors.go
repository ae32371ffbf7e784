package gauge

import "errors"

var (
	// ErrInvalidDomain is returned when min and max do not describe a usable
	// range: they are equal, NaN or infinite.
	ErrInvalidDomain = errors.New("gauge: invalid domain")

	// ErrInvalidValue is returned when the value itself is NaN or infinite.
	ErrInvalidValue = errors.New("gauge: invalid value")
)
