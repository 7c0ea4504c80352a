package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Polyline adapts a raw point loop (a DXF outline, an imported section) to
// the Curve interface. Discretization is by arc length over the closed loop.
type Polyline []r2.Vec

// Discretize returns n points spaced evenly by arc length. Fewer than three
// source points, or a zero-length loop with no extent, yield nil; callers go
// through NewProfile which reports the error.
func (pl Polyline) Discretize(n int) []r2.Vec {
	p, err := NewProfile(pl)
	if err != nil {
		return nil
	}
	out, err := p.Resample(n)
	if err != nil {
		return nil
	}
	return out
}

// Ellipse is a closed elliptical curve centered on Center with semi-axes A
// and B. It stands in for airfoil sections in tests and sample programs.
type Ellipse struct {
	Center r2.Vec
	A, B   float64
}

// Discretize returns n points by uniform parameter angle. Arc-length
// regularization happens downstream in Profile.Resample.
func (e Ellipse) Discretize(n int) []r2.Vec {
	if n < 3 {
		return nil
	}
	pts := make([]r2.Vec, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = r2.Vec{
			X: e.Center.X + e.A*math.Cos(theta),
			Y: e.Center.Y + e.B*math.Sin(theta),
		}
	}
	return pts
}

// Rect is a closed rectangular curve, handy for panel outlines and tests.
type Rect struct {
	Min, Max r2.Vec
}

// Discretize returns the rectangle resampled to n stations.
func (r Rect) Discretize(n int) []r2.Vec {
	return Polyline{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}.Discretize(n)
}
