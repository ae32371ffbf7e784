package gauge

// Palette is the binary color policy of the standalone gauge.
type Palette struct {
	Positive string `json:"positive" mapstructure:"positive"`
	Warning  string `json:"warning"  mapstructure:"warning"`
}

// DefaultPalette is green for genuine results and red for fakes.
var DefaultPalette = Palette{
	Positive: "#2ecc71",
	Warning:  "#e74c3c",
}

// For returns the value-arc color for the given flag.
func (p Palette) For(fake bool) string {
	if fake {
		return p.Warning
	}
	return p.Positive
}

// RingColors is the single-accent policy of the chart plugin: one color for
// the filled share and a translucent gray for the rest.
type RingColors struct {
	Accent    string `json:"accent"    mapstructure:"accent"`
	Remainder string `json:"remainder" mapstructure:"remainder"`
}

// DefaultRingColors matches the chart plugin's stock look.
var DefaultRingColors = RingColors{
	Accent:    "#0d6efd",
	Remainder: "rgba(200, 200, 200, 0.2)",
}

// Segments splits a normalized value into the filled and remaining shares
// of a ring. Either share may be zero or negative when n overshoots.
func Segments(n float64) (filled, remainder float64) {
	return n, 1 - n
}
