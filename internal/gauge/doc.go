// Package gauge converts a confidence value and its domain into the
// geometry of a half-ring dial: the normalized position, the sweep angles
// of the value arc, the pointer endpoint, and the display text.
//
// Everything here is pure. Nothing is drawn and nothing is retained
// between calls, so a Geometry is recomputed for every render.
//
// Angles follow the canvas convention: 0 is the positive x-axis and angles
// grow clockwise on screen because y grows downward. The dial runs from π
// (left) to 0 (right).
package gauge
