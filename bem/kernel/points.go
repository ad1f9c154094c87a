package kernel

import (
	"math"

	"github.com/thomtron/bem-bubbles/bem/geo"
)

const fourPi = 4 * math.Pi

// gPoint is the single-layer kernel 1/(4*pi*r).
func gPoint(x, y geo.Vec3) float64 {
	r := y.Sub(x).Norm()
	return 1.0 / (fourPi * r)
}

// hPoint is the double-layer kernel -(y-x).ny / (4*pi*r^3).
func hPoint(x, y, ny geo.Vec3) float64 {
	d := y.Sub(x)
	r := d.Norm()
	return -d.Dot(ny) / (fourPi * r * r * r)
}
