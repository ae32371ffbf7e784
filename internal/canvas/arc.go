package canvas

import "math"

const twoPi = 2 * math.Pi

// ArcSweep converts canvas arc() arguments into an increasing angle range
// [from, to] covering the same points. A change of 2π or more in the
// requested direction is a full circle; otherwise the end angle is wrapped
// into the single turn that starts at start.
func ArcSweep(start, end float64, anticlockwise bool) (from, to float64) {
	if !anticlockwise {
		if end-start >= twoPi {
			return start, start + twoPi
		}
		return start, start + positiveMod(end-start, twoPi)
	}

	if start-end >= twoPi {
		return start - twoPi, start
	}
	sweep := positiveMod(start-end, twoPi)
	return start - sweep, start
}

// positiveMod returns x mod m in [0, m).
func positiveMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

// arcPoint is the point at angle on a circle.
func arcPoint(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Cos(angle), cy + r*math.Sin(angle)
}
