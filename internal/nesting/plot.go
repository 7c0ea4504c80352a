package nesting

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/open-ez/foamcam/internal/fsutil"
)

// UtilizationPlot renders a per-sheet area utilization bar chart beside the
// layouts, for quick operator review of how full a nest run came out.
func (e *Exporter) UtilizationPlot(placements []Placement, outDir string) (string, error) {
	if len(placements) == 0 {
		return "", ErrNoOutlines
	}
	filesys := e.FS
	if filesys == nil {
		filesys = fsutil.OS{}
	}

	maxSheet := 0
	for _, pl := range placements {
		if pl.Sheet > maxSheet {
			maxSheet = pl.Sheet
		}
	}
	if maxSheet >= len(e.Sheets) {
		return "", fmt.Errorf("nesting: placement references sheet %d but only %d sheets configured", maxSheet, len(e.Sheets))
	}

	used := make([]float64, maxSheet+1)
	for _, pl := range placements {
		used[pl.Sheet] += pl.PlacedWidth() * pl.PlacedHeight()
	}

	values := make(plotter.Values, len(used))
	labels := make([]string, len(used))
	for i, area := range used {
		sheetArea := e.Sheets[i].Width * e.Sheets[i].Height
		if sheetArea > 0 {
			values[i] = 100 * area / sheetArea
		}
		labels[i] = fmt.Sprintf("%d", i)
	}

	p := plot.New()
	p.Title.Text = "Sheet utilization"
	p.Y.Label.Text = "% of sheet area"
	p.Y.Min, p.Y.Max = 0, 100

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return "", fmt.Errorf("nesting: utilization chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	wt, err := p.WriterTo(5*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return "", fmt.Errorf("nesting: render utilization plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("nesting: render utilization plot: %w", err)
	}

	if err := filesys.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("nesting: create output dir: %w", err)
	}
	path := filepath.Join(outDir, "nest_utilization.png")
	if err := filesys.WriteFile(path, buf.Bytes(), os.FileMode(0o644)); err != nil {
		return "", fmt.Errorf("nesting: write utilization plot: %w", err)
	}
	return path, nil
}
