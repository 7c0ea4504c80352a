package hotwire

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-ez/foamcam/internal/fsutil"
	"github.com/open-ez/foamcam/internal/geom"
	"github.com/open-ez/foamcam/internal/units"
)

// canardJob mirrors the Long-EZ canard: 17 in root chord, 13.5 in tip
// chord, styrofoam kerf, 4 in/min base feed.
func canardJob() Job {
	return Job{
		RootName:     "canard-root",
		TipName:      "canard-tip",
		Material:     "styrofoam_blue",
		Kerf:         0.045,
		BaseFeed:     4.0,
		LeadDistance: 0.5,
		SafeHeight:   5.0,
		Stations:     50,
		PreheatDwell: 2.0,
		Units:        units.Inch,
	}
}

func canardSections() (root, tip geom.Curve) {
	return geom.Ellipse{A: 8.5, B: 1.2}, geom.Ellipse{A: 6.75, B: 0.95}
}

func TestBuildSynchronizesProfiles(t *testing.T) {
	t.Parallel()

	job := canardJob()
	root, tip := canardSections()
	cut, err := job.Build(root, tip)
	require.NoError(t, err)

	assert.Len(t, cut.Root, 50)
	assert.Len(t, cut.Tip, 50)
	assert.Len(t, cut.Feeds, 49)
	assert.Empty(t, cut.Warnings)

	// Station 0 is the trailing edge on both sections.
	for i, p := range cut.Root {
		assert.LessOrEqual(t, p.X, cut.Root[0].X+1e-9, "root station %d", i)
	}
	for i, p := range cut.Tip {
		assert.LessOrEqual(t, p.X, cut.Tip[0].X+1e-9, "tip station %d", i)
	}

	// Scheduled feeds stay inside the tool-safe band.
	for i, f := range cut.Feeds {
		assert.GreaterOrEqual(t, f, 2.0, "segment %d", i)
		assert.LessOrEqual(t, f, 4.0, "segment %d", i)
	}
}

func TestBuildRejectsDegenerateInput(t *testing.T) {
	t.Parallel()

	job := canardJob()
	_, err := job.Build(geom.Ellipse{A: 0, B: 0}, geom.Ellipse{A: 6.75, B: 0.95})
	assert.ErrorIs(t, err, geom.ErrDegenerateProfile)

	job.Stations = 2
	root, tip := canardSections()
	_, err = job.Build(root, tip)
	assert.ErrorIs(t, err, geom.ErrInsufficientPoints)
}

func TestProgramEndToEnd(t *testing.T) {
	t.Parallel()

	job := canardJob()
	root, tip := canardSections()
	cut, err := job.Build(root, tip)
	require.NoError(t, err)

	text, err := job.Program(cut, "test-run", time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, text, "(Kerf compensation: 0.0450 in)")
	assert.Contains(t, text, "(Base feed: 4.00 in/min)")
	assert.Contains(t, text, "(Stations: 50 root / 50 tip)")
	assert.Contains(t, text, "G20 ; inch units")
	assert.Contains(t, text, "G90 ; absolute positioning")
	assert.Contains(t, text, "M3 ; energize hot wire")
	assert.Contains(t, text, "G4 P2.0 ; preheat dwell")
	assert.Contains(t, text, "M5 ; de-energize hot wire")
	assert.True(t, strings.HasSuffix(text, "M30\n"))

	// Every cutting move carries all four axis words plus a feed: the two
	// carriage streams are the same length by construction.
	var cutMoves int
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "G1 ") {
			assert.Contains(t, line, "X")
			assert.Contains(t, line, "Y")
			assert.Contains(t, line, "Z")
			assert.Contains(t, line, "A")
			assert.Contains(t, line, "F")
			cutMoves++
		}
	}
	// Plunge + 49 station moves + loop close + lead-out.
	assert.Equal(t, 52, cutMoves)

	// The lead-in sits outside both source bounding boxes by about the
	// lead distance (kerf offset included).
	leadLine := findLine(t, text, "rapid to lead-in")
	var rx, tx, ry, ty float64
	_, err = fmt.Sscanf(leadLine, "G0 X%f Y%f Z%f A%f", &rx, &tx, &ry, &ty)
	require.NoError(t, err)
	assert.Greater(t, rx, 8.5)
	assert.InDelta(t, 8.5+0.045+0.5, rx, 0.05)
	assert.Greater(t, tx, 6.75)
	assert.InDelta(t, 6.75+0.045+0.5, tx, 0.05)
}

func TestProgramRejectsBadPaths(t *testing.T) {
	t.Parallel()

	job := canardJob()

	_, err := job.Program(nil, "run", time.Now())
	assert.Error(t, err)

	root, tip := canardSections()
	cut, err := job.Build(root, tip)
	require.NoError(t, err)

	broken := &CutPath{Root: cut.Root, Tip: cut.Tip[:20], Feeds: cut.Feeds}
	_, err = job.Program(broken, "run", time.Now())
	assert.ErrorContains(t, err, "unsynchronized")

	broken = &CutPath{Root: cut.Root, Tip: cut.Tip, Feeds: cut.Feeds[:10]}
	_, err = job.Program(broken, "run", time.Now())
	assert.ErrorContains(t, err, "feeds")
}

func TestWriteIsAllOrNothing(t *testing.T) {
	t.Parallel()

	job := canardJob()
	root, tip := canardSections()
	cut, err := job.Build(root, tip)
	require.NoError(t, err)

	mem := fsutil.NewMemory()
	require.NoError(t, job.Write(mem, "out/canard.tap", cut, "run", time.Now()))
	data, err := mem.ReadFile("out/canard.tap")
	require.NoError(t, err)
	assert.Contains(t, string(data), "M30")

	// A bad path writes nothing at all.
	mem = fsutil.NewMemory()
	broken := &CutPath{Root: cut.Root, Tip: cut.Tip[:20], Feeds: cut.Feeds}
	require.Error(t, job.Write(mem, "out/broken.tap", broken, "run", time.Now()))
	assert.Empty(t, mem.Files())
}

func findLine(t *testing.T, text, marker string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, marker) {
			return line
		}
	}
	t.Fatalf("no line containing %q", marker)
	return ""
}
