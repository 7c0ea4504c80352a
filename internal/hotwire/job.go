// Package hotwire synthesizes synchronized 4-axis hot-wire toolpaths from
// paired root/tip cross-section curves. A Job carries the immutable cutting
// parameters; Build derives a CutPath and Program renders it as a
// Mach3/GRBL-compatible G-code file. Jobs share no state and may run
// concurrently.
package hotwire

import (
	"fmt"

	"github.com/open-ez/foamcam/internal/geom"
	"github.com/open-ez/foamcam/internal/units"
)

// Job holds the immutable inputs of one hot-wire generation run.
type Job struct {
	// RootName and TipName identify the source sections in provenance
	// comments and error messages.
	RootName string
	TipName  string

	// Material is the foam being cut; recorded in the program header.
	Material string

	// Kerf is the signed offset applied to both profiles. Positive values
	// grow the path outward so the finished core meets net dimensions.
	Kerf float64

	// BaseFeed is the nominal wire feed in units/min; the Schedule scales
	// it along the cut.
	BaseFeed float64

	// LeadDistance extrapolates entry/exit moves beyond the profile so the
	// wire never starts or stops inside the finished part.
	LeadDistance float64

	// SafeHeight is the clearance used for rapid moves.
	SafeHeight float64

	// Stations is the synchronized point count for both profiles.
	Stations int

	// PreheatDwell is the heater warm-up pause in seconds.
	PreheatDwell float64

	Units    units.System
	Schedule Schedule
}

// CutPath is a pair of synchronized profiles with equal station counts plus
// the per-segment feeds. Index i on Root and Tip is reached by both
// carriages at the same time slice.
type CutPath struct {
	Root geom.Profile
	Tip  geom.Profile

	// Feeds[i] is the feed for the move from station i to i+1.
	Feeds []float64

	// Warnings carries non-fatal geometry findings, currently post-offset
	// self-intersection. The path is still emitted; the operator decides.
	Warnings []string
}

// Build runs the toolpath synthesis chain: discretize both curves by arc
// length, apply kerf offset, synchronize to a common station count, align
// station 0 to the maximum-X point (trailing edge), and schedule feeds.
// Degenerate input fails here, before anything is written.
func (j Job) Build(root, tip geom.Curve) (*CutPath, error) {
	if j.Stations < 3 {
		return nil, fmt.Errorf("hotwire: job %s/%s: %d stations: %w",
			j.RootName, j.TipName, j.Stations, geom.ErrInsufficientPoints)
	}

	rootProfile, err := geom.FromCurve(root, j.Stations)
	if err != nil {
		return nil, fmt.Errorf("hotwire: root profile %q: %w", j.RootName, err)
	}
	tipProfile, err := geom.FromCurve(tip, j.Stations)
	if err != nil {
		return nil, fmt.Errorf("hotwire: tip profile %q: %w", j.TipName, err)
	}

	rootOffset := rootProfile.Offset(j.Kerf)
	tipOffset := tipProfile.Offset(j.Kerf)

	var warnings []string
	if j.Kerf != 0 {
		if rootOffset.SelfIntersects() {
			warnings = append(warnings, fmt.Sprintf("root profile %q self-intersects after %.4f kerf offset", j.RootName, j.Kerf))
		}
		if tipOffset.SelfIntersects() {
			warnings = append(warnings, fmt.Sprintf("tip profile %q self-intersects after %.4f kerf offset", j.TipName, j.Kerf))
		}
	}

	rootSync, tipSync, err := geom.Synchronize(rootOffset, tipOffset, 0)
	if err != nil {
		return nil, fmt.Errorf("hotwire: synchronize %q/%q: %w", j.RootName, j.TipName, err)
	}

	rootSync = rootSync.AlignToMaxX()
	tipSync = tipSync.AlignToMaxX()

	sched := j.Schedule
	if sched == nil {
		sched = DefaultSchedule()
	}

	return &CutPath{
		Root:     rootSync,
		Tip:      tipSync,
		Feeds:    sched.sortedCopy().Feeds(len(rootSync), j.BaseFeed),
		Warnings: warnings,
	}, nil
}
