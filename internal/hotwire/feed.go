package hotwire

import "sort"

// Breakpoint maps a normalized path progress t in [0,1] to a feed multiplier.
type Breakpoint struct {
	T      float64
	Factor float64
}

// Schedule is a piecewise-linear feed profile over normalized cut progress.
// Progress outside the table clamps to the nearest endpoint, so the
// evaluated factor always stays inside [min, max] of the table values.
//
// This is the breakpoint-table policy; the alternative segment-length-ratio
// policy was rejected because it ties wire speed to discretization density
// (see DESIGN.md).
type Schedule []Breakpoint

// DefaultSchedule ramps in over the first tenth of the cut, runs at full
// speed mid-panel, and ramps down again approaching the trailing-edge
// wrap-up. Half-speed entry keeps wire deflection low while the kerf
// stabilizes.
func DefaultSchedule() Schedule {
	return Schedule{
		{T: 0.00, Factor: 0.5},
		{T: 0.10, Factor: 1.0},
		{T: 0.90, Factor: 1.0},
		{T: 1.00, Factor: 0.5},
	}
}

// At evaluates the feed multiplier at progress t. An empty schedule is a
// flat 1.0 profile. Breakpoints are assumed sorted by T; DefaultSchedule and
// sortedCopy guarantee it.
func (s Schedule) At(t float64) float64 {
	if len(s) == 0 {
		return 1.0
	}
	if t <= s[0].T {
		return s[0].Factor
	}
	if t >= s[len(s)-1].T {
		return s[len(s)-1].Factor
	}
	for i := 1; i < len(s); i++ {
		if t <= s[i].T {
			span := s[i].T - s[i-1].T
			if span <= 0 {
				return s[i].Factor
			}
			frac := (t - s[i-1].T) / span
			return s[i-1].Factor + frac*(s[i].Factor-s[i-1].Factor)
		}
	}
	return s[len(s)-1].Factor
}

// Bounds returns the minimum and maximum factors in the table. Every value
// At can produce lies inside this range.
func (s Schedule) Bounds() (min, max float64) {
	if len(s) == 0 {
		return 1.0, 1.0
	}
	min, max = s[0].Factor, s[0].Factor
	for _, bp := range s[1:] {
		if bp.Factor < min {
			min = bp.Factor
		}
		if bp.Factor > max {
			max = bp.Factor
		}
	}
	return min, max
}

// Feeds produces the per-segment feed array for an n-station cut: entry i is
// the feed for the move from station i to station i+1, evaluated at the
// segment midpoint of normalized progress and scaled by base.
func (s Schedule) Feeds(n int, base float64) []float64 {
	if n < 2 {
		return nil
	}
	out := make([]float64, n-1)
	for i := range out {
		t := (float64(i) + 0.5) / float64(n-1)
		out[i] = base * s.At(t)
	}
	return out
}

func (s Schedule) sortedCopy() Schedule {
	cp := make(Schedule, len(s))
	copy(cp, s)
	sort.Slice(cp, func(i, j int) bool { return cp[i].T < cp[j].T })
	return cp
}
