// Package standalone paints gauges straight onto a drawing surface with no
// chart host involved. It offers two call shapes: a two-segment half ring
// (CreateGaugeChart) and the complete dial with pointer and percentage
// text (DrawGaugeChart and Draw).
//
// Every draw clears the whole surface first and keeps no state between
// calls.
package standalone
