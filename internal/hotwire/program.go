package hotwire

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/open-ez/foamcam/internal/fsutil"
	"github.com/open-ez/foamcam/internal/geom"
)

// Axis word mapping, fixed by the machine wiring: X/Z drive the root
// carriage, Y/A the tip carriage.
//
//	X = root x   Y = tip x
//	Z = root y   A = tip y

// Program renders the cut path as a complete G-code program. The text is
// assembled fully in memory; nothing touches disk until Write is called
// with the finished bytes, so a failing job leaves no partial file.
func (j Job) Program(cp *CutPath, runID string, generated time.Time) (string, error) {
	if cp == nil || len(cp.Root) < 3 {
		return "", fmt.Errorf("hotwire: program %s/%s: empty cut path: %w",
			j.RootName, j.TipName, geom.ErrInsufficientPoints)
	}
	n := len(cp.Root)
	if len(cp.Tip) != n {
		return "", fmt.Errorf("hotwire: program %s/%s: unsynchronized path: root %d stations, tip %d",
			j.RootName, j.TipName, n, len(cp.Tip))
	}
	if len(cp.Feeds) != n-1 {
		return "", fmt.Errorf("hotwire: program %s/%s: %d feeds for %d stations",
			j.RootName, j.TipName, len(cp.Feeds), n)
	}

	rootIn, rootOut := leadPoints(cp.Root, j.LeadDistance)
	tipIn, tipOut := leadPoints(cp.Tip, j.LeadDistance)

	sched := j.Schedule
	if sched == nil {
		sched = DefaultSchedule()
	}
	entryFeed := j.BaseFeed * sched.At(0)
	exitFeed := j.BaseFeed * sched.At(1)

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("(foamcam hot-wire toolpath)")
	line("(Synchronized 4-axis cut; Mach3/GRBL format)")
	line("(Run: %s)", runID)
	line("(Generated: %s)", generated.UTC().Format(time.RFC3339))
	line("(Sections: root=%s tip=%s material=%s)", j.RootName, j.TipName, j.Material)
	line("(Kerf compensation: %.4f %s)", j.Kerf, j.Units.Label())
	line("(Base feed: %.2f %s)", j.BaseFeed, j.Units.FeedLabel())
	line("(Stations: %d root / %d tip)", n, len(cp.Tip))
	for _, w := range cp.Warnings {
		line("(WARNING: %s)", w)
	}
	line("G90 ; absolute positioning")
	line("G94 ; units per minute feed")
	line("%s ; %s units", j.Units.GCode(), j.Units)
	line("G0 X0.0000 Y0.0000 Z%.4f A%.4f ; safe start", j.SafeHeight, j.SafeHeight)
	line("M3 ; energize hot wire")
	if j.PreheatDwell > 0 {
		line("G4 P%.1f ; preheat dwell", j.PreheatDwell)
	}
	line("G0 X%.4f Y%.4f Z%.4f A%.4f ; rapid to lead-in", rootIn.X, tipIn.X, rootIn.Y, tipIn.Y)
	line("G1 X%.4f Y%.4f Z%.4f A%.4f F%.2f ; plunge to station 0",
		cp.Root[0].X, cp.Tip[0].X, cp.Root[0].Y, cp.Tip[0].Y, entryFeed)

	for i := 1; i < n; i++ {
		line("G1 X%.4f Y%.4f Z%.4f A%.4f F%.2f",
			cp.Root[i].X, cp.Tip[i].X, cp.Root[i].Y, cp.Tip[i].Y, cp.Feeds[i-1])
	}

	line("G1 X%.4f Y%.4f Z%.4f A%.4f F%.2f ; close loop",
		cp.Root[0].X, cp.Tip[0].X, cp.Root[0].Y, cp.Tip[0].Y, exitFeed)
	line("G1 X%.4f Y%.4f Z%.4f A%.4f F%.2f ; lead-out",
		rootOut.X, tipOut.X, rootOut.Y, tipOut.Y, exitFeed)
	line("M5 ; de-energize hot wire")
	line("G0 Z%.4f A%.4f ; retract", j.SafeHeight, j.SafeHeight)
	line("G0 X0.0000 Y0.0000 Z%.4f A%.4f ; home", j.SafeHeight, j.SafeHeight)
	line("M30")

	return b.String(), nil
}

// Write generates the program and writes it in one shot.
func (j Job) Write(filesys fsutil.FileSystem, path string, cp *CutPath, runID string, generated time.Time) error {
	text, err := j.Program(cp, runID, generated)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := filesys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("hotwire: create output dir: %w", err)
		}
	}
	if err := filesys.WriteFile(path, []byte(text), os.FileMode(0o644)); err != nil {
		return fmt.Errorf("hotwire: write program: %w", err)
	}
	return nil
}

// leadPoints extrapolates the entry and exit positions beyond station 0.
// Station 0 is the maximum-X point (trailing edge), so extending radially
// away from the centroid puts both leads outside the profile's bounding box
// by about the lead distance: the wire enters and exits through the stock
// edge, never inside the finished part. The travel tangent at the trailing
// edge is nearly perpendicular to the chord, which is why the radial
// direction, not the tangent, defines the lead.
func leadPoints(p geom.Profile, lead float64) (in, out r2.Vec) {
	outward := r2.Sub(p[0], p.Centroid())
	if r2.Norm(outward) == 0 {
		return p[0], p[0]
	}
	q := r2.Add(p[0], r2.Scale(lead, r2.Unit(outward)))
	return q, q
}
