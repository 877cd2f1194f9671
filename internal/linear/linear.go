// Package linear implements the two-point linear primitives used to resolve
// fluid properties along the pressure axis.
package linear

import "errors"

// ErrDegenerateBracket is returned when both reference points share the same x.
var ErrDegenerateBracket = errors.New("reference points share the same pressure")

// Interpolate returns y at x on the line through (x1, y1) and (x2, y2),
// where x is expected to lie between x1 and x2.
// Returns nil if either y is absent.
func Interpolate(x, x1, x2 float64, y1, y2 *float64) (*float64, error) {
	return line(x, x1, x2, y1, y2)
}

// Extrapolate returns y at x on the line through (x1, y1) and (x2, y2),
// where x is expected to lie outside [x1, x2].
// The arithmetic is identical to Interpolate; only the caller's choice of
// reference points differs.
func Extrapolate(x, x1, x2 float64, y1, y2 *float64) (*float64, error) {
	return line(x, x1, x2, y1, y2)
}

func line(x, x1, x2 float64, y1, y2 *float64) (*float64, error) {
	if y1 == nil || y2 == nil {
		return nil, nil
	}
	if x1 == x2 {
		return nil, ErrDegenerateBracket
	}
	v := *y1 + (*y2-*y1)*(x-x1)/(x2-x1)
	return &v, nil
}
