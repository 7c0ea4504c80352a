// Package geom implements the 2D profile kernel shared by the hot-wire and
// nesting pipelines: arc-length resampling, kerf offsetting, dual-profile
// synchronization, and the small vector helpers those need.
//
// A Profile is an ordered loop of points describing a closed curve. The loop
// is stored open (the closing segment from the last point back to the first
// is implicit) so that index arithmetic stays modular and resampled profiles
// never carry a duplicated seam point.
package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrInsufficientPoints is returned when a curve yields fewer than
	// three usable stations.
	ErrInsufficientPoints = errors.New("geom: profile needs at least 3 points")

	// ErrDegenerateProfile is returned when a curve collapses to a single
	// point and no bounding-box fallback is possible.
	ErrDegenerateProfile = errors.New("geom: degenerate zero-extent profile")
)

// Curve is the narrow capability this core needs from the CAD collaborator:
// anything that can discretize itself into an ordered point sequence.
type Curve interface {
	Discretize(n int) []r2.Vec
}

// Profile is an ordered sequence of points describing a closed curve.
// The closing segment is implicit; points are not repeated at the seam.
type Profile []r2.Vec

// NewProfile validates a point loop and returns it as a Profile. A trailing
// point that duplicates the first is dropped so callers may pass either open
// or explicitly closed loops.
func NewProfile(pts []r2.Vec) (Profile, error) {
	if n := len(pts); n > 1 && equalWithin(pts[0], pts[n-1], 1e-12) {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return nil, ErrInsufficientPoints
	}
	p := make(Profile, len(pts))
	copy(p, pts)
	return p, nil
}

// FromCurve discretizes a curve into an n-station profile. A curve that
// yields fewer than three points falls back to the corner loop of its
// bounding box, an approximation for degenerate sections rather than a
// silent repair; curves with no extent at all are rejected.
func FromCurve(c Curve, n int) (Profile, error) {
	if n < 3 {
		return nil, fmt.Errorf("geom: %d stations requested: %w", n, ErrInsufficientPoints)
	}
	pts := c.Discretize(n)
	if len(pts) == 0 {
		return nil, ErrInsufficientPoints
	}
	p, err := NewProfile(pts)
	if err != nil {
		p, err = boundingBoxLoop(pts)
		if err != nil {
			return nil, err
		}
	}
	return p.Resample(n)
}

// Perimeter returns the closed arc length of the profile.
func (p Profile) Perimeter() float64 {
	var s float64
	for i := range p {
		s += r2.Norm(r2.Sub(p[(i+1)%len(p)], p[i]))
	}
	return s
}

// Centroid returns the mean of the profile's points. The offset sign
// heuristic treats "inward" as "toward this point".
func (p Profile) Centroid() r2.Vec {
	var c r2.Vec
	for _, q := range p {
		c = r2.Add(c, q)
	}
	return r2.Scale(1/float64(len(p)), c)
}

// SignedArea returns the shoelace area of the closed loop. Positive for
// counter-clockwise winding.
func (p Profile) SignedArea() float64 {
	var a float64
	for i := range p {
		j := (i + 1) % len(p)
		a += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return a / 2
}

// Area returns the absolute enclosed area.
func (p Profile) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Bounds returns the axis-aligned bounding box of the profile.
func (p Profile) Bounds() (min, max r2.Vec) {
	min = r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	max = r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, q := range p {
		min.X = math.Min(min.X, q.X)
		min.Y = math.Min(min.Y, q.Y)
		max.X = math.Max(max.X, q.X)
		max.Y = math.Max(max.Y, q.Y)
	}
	return min, max
}

// Resample redistributes the profile to n stations spaced evenly by arc
// length around the closed loop. Station i sits at fraction i/n of the
// perimeter, so the implicit closing segment keeps the same length as the
// rest and no seam point is duplicated.
//
// A zero-perimeter profile (every point coincident) cannot be
// parameterized and returns ErrDegenerateProfile.
func (p Profile) Resample(n int) (Profile, error) {
	if n < 3 {
		return nil, fmt.Errorf("geom: resample to %d stations: %w", n, ErrInsufficientPoints)
	}
	if len(p) < 3 {
		return nil, ErrInsufficientPoints
	}

	total := p.Perimeter()
	if total <= 0 {
		return nil, ErrDegenerateProfile
	}

	// Cumulative arc length at each vertex, including the closing segment.
	m := len(p)
	cum := make([]float64, m+1)
	for i := 0; i < m; i++ {
		cum[i+1] = cum[i] + r2.Norm(r2.Sub(p[(i+1)%m], p[i]))
	}

	out := make(Profile, n)
	seg := 0
	for i := 0; i < n; i++ {
		// Walk forward until target falls inside [cum[seg], cum[seg+1]].
		target := total * float64(i) / float64(n)
		for seg < m-1 && cum[seg+1] < target {
			seg++
		}
		a, b := p[seg], p[(seg+1)%m]
		span := cum[seg+1] - cum[seg]
		var t float64
		if span > 0 {
			t = (target - cum[seg]) / span
		}
		out[i] = r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
	}
	return out, nil
}

// boundingBoxLoop approximates a degenerate point set by its bounding-box
// corner loop. A set with no extent in either axis is unrecoverable.
func boundingBoxLoop(pts []r2.Vec) (Profile, error) {
	min, max := Profile(pts).Bounds()
	if max.X-min.X <= 0 && max.Y-min.Y <= 0 {
		return nil, ErrDegenerateProfile
	}
	return Profile{
		{X: min.X, Y: min.Y},
		{X: max.X, Y: min.Y},
		{X: max.X, Y: max.Y},
		{X: min.X, Y: max.Y},
	}, nil
}

// Offset displaces every point along its local normal by distance d.
// Positive d moves points away from the centroid (outward, growing the
// loop); negative d moves them inward. The normal at a vertex is the average
// of its two adjacent segment tangents rotated a quarter turn, with the sign
// resolved against the vertex-to-centroid direction so the result is
// independent of the input winding order. Vertices whose averaged tangent is
// near zero (duplicate neighbors) are left unmoved.
func (p Profile) Offset(d float64) Profile {
	out := make(Profile, len(p))
	if d == 0 {
		copy(out, p)
		return out
	}

	c := p.Centroid()
	n := len(p)
	for i := range p {
		prev := p[(i-1+n)%n]
		next := p[(i+1)%n]
		tangent := r2.Add(r2.Sub(p[i], prev), r2.Sub(next, p[i]))
		if r2.Norm(tangent) < 1e-9 {
			out[i] = p[i]
			continue
		}
		normal := r2.Unit(r2.Vec{X: -tangent.Y, Y: tangent.X})
		// Flip so the normal points away from the centroid.
		if r2.Dot(normal, r2.Sub(p[i], c)) < 0 {
			normal = r2.Scale(-1, normal)
		}
		out[i] = r2.Add(p[i], r2.Scale(d, normal))
	}
	return out
}

// SelfIntersects reports whether any two non-adjacent segments of the closed
// loop cross. Kerf offsetting of tight concave regions can fold the path
// over itself; callers use this to warn or reject rather than emit a crossed
// toolpath.
func (p Profile) SelfIntersects() bool {
	n := len(p)
	for i := 0; i < n; i++ {
		a1, a2 := p[i], p[(i+1)%n]
		for j := i + 2; j < n; j++ {
			// Skip the pair sharing the seam vertex.
			if i == 0 && j == n-1 {
				continue
			}
			b1, b2 := p[j], p[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// AlignToMaxX rotates the point order so index 0 is the point of maximum X.
// For airfoil sections this is the trailing edge, the conventional wire
// entry point; aligning both profiles of a cut to the same feature keeps
// index-for-index correspondence structurally meaningful.
func (p Profile) AlignToMaxX() Profile {
	start := 0
	for i, q := range p {
		if q.X > p[start].X {
			start = i
		}
	}
	out := make(Profile, len(p))
	for i := range p {
		out[i] = p[(start+i)%len(p)]
	}
	return out
}

// Translate returns the profile shifted by v.
func (p Profile) Translate(v r2.Vec) Profile {
	out := make(Profile, len(p))
	for i, q := range p {
		out[i] = r2.Add(q, v)
	}
	return out
}

// Rotate returns the profile rotated by alpha radians about the origin.
func (p Profile) Rotate(alpha float64) Profile {
	out := make(Profile, len(p))
	for i, q := range p {
		out[i] = r2.Rotate(q, alpha, r2.Vec{})
	}
	return out
}

// Synchronize resamples two profiles to an identical station count so that
// index i on each is reached at the same time slice, the defining
// correctness property of a 4-axis cut. When n <= 0 the count defaults to
// max(len(a), len(b)).
func Synchronize(a, b Profile, n int) (Profile, Profile, error) {
	if n <= 0 {
		n = len(a)
		if len(b) > n {
			n = len(b)
		}
	}
	ra, err := a.Resample(n)
	if err != nil {
		return nil, nil, fmt.Errorf("geom: synchronize first profile: %w", err)
	}
	rb, err := b.Resample(n)
	if err != nil {
		return nil, nil, fmt.Errorf("geom: synchronize second profile: %w", err)
	}
	return ra, rb, nil
}

func equalWithin(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// segmentsCross reports proper intersection of segments a1a2 and b1b2.
// Touching endpoints do not count.
func segmentsCross(a1, a2, b1, b2 r2.Vec) bool {
	d1 := r2.Cross(r2.Sub(a2, a1), r2.Sub(b1, a1))
	d2 := r2.Cross(r2.Sub(a2, a1), r2.Sub(b2, a1))
	d3 := r2.Cross(r2.Sub(b2, b1), r2.Sub(a1, b1))
	d4 := r2.Cross(r2.Sub(b2, b1), r2.Sub(a2, b1))
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}
