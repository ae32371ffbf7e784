package canvas

import (
	"fmt"
	"strconv"
	"strings"
)

// Font is a parsed CSS font shorthand.
type Font struct {
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
	Size   float64 `json:"size"`
	Family string  `json:"family"`
}

// String renders the font back as CSS shorthand, e.g. "bold 24px Arial".
func (f Font) String() string {
	var b strings.Builder
	if f.Italic {
		b.WriteString("italic ")
	}
	if f.Bold {
		b.WriteString("bold ")
	}
	b.WriteString(strconv.FormatFloat(f.Size, 'f', -1, 64))
	b.WriteString("px ")
	b.WriteString(f.Family)
	return b.String()
}

// ParseFont reads "[italic] [bold] <size>px <family>". The family may be a
// comma separated list.
func ParseFont(s string) (Font, error) {
	var f Font
	fields := strings.Fields(s)
	for i, field := range fields {
		switch strings.ToLower(field) {
		case "italic", "oblique":
			f.Italic = true
			continue
		case "bold", "bolder", "700", "800", "900":
			f.Bold = true
			continue
		case "normal":
			continue
		}

		if !strings.HasSuffix(field, "px") {
			return Font{}, fmt.Errorf("%w: %q", ErrBadFont, s)
		}
		size, err := strconv.ParseFloat(strings.TrimSuffix(field, "px"), 64)
		if err != nil || size <= 0 {
			return Font{}, fmt.Errorf("%w: bad size in %q", ErrBadFont, s)
		}
		f.Size = size
		f.Family = strings.Join(fields[i+1:], " ")
		if f.Family == "" {
			return Font{}, fmt.Errorf("%w: missing family in %q", ErrBadFont, s)
		}
		if !validFamily(f.Family) {
			return Font{}, fmt.Errorf("%w: bad family in %q", ErrBadFont, s)
		}
		return f, nil
	}
	return Font{}, fmt.Errorf("%w: missing size in %q", ErrBadFont, s)
}

// MustParseFont is ParseFont for package-level constants.
func MustParseFont(s string) Font {
	f, err := ParseFont(s)
	if err != nil {
		panic(err)
	}
	return f
}

// validFamily accepts family lists made of letters, digits, spaces, commas,
// hyphens, underscores and single quotes.
func validFamily(family string) bool {
	if family == "" {
		return false
	}
	for _, r := range family {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == ' ', r == ',', r == '-', r == '_', r == '\'':
		default:
			return false
		}
	}
	return true
}
