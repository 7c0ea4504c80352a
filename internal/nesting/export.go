package nesting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/open-ez/foamcam/internal/fsutil"
)

// Exporter writes per-sheet layout SVGs and the CSV manifest for a packed
// nest. Every file is assembled in memory before anything is written, so a
// failed export leaves no partial layout on disk.
type Exporter struct {
	Sheets         []StockSheet
	DogboneRadius  float64
	FilletRadius   float64
	EngravingDepth float64
	SheetGrainDeg  float64

	// IncludeGrainArrows enables the per-part grain arrows and the
	// sheet-level grain reference arrow.
	IncludeGrainArrows bool

	// CutOrders overrides the cut-step sequence per laminate id. Parts
	// whose laminate has no entry use the default engrave → pocket →
	// profile order.
	CutOrders map[string][]string

	FS fsutil.FileSystem
}

const manifestName = "nest_manifest.csv"

// manifestHeader is the fixed manifest column set, one row per placement.
var manifestHeader = []string{
	"sheet", "part", "x", "y", "width", "height",
	"rotation", "laminate", "grain_note", "cut_order",
}

// Export writes one SVG per used sheet plus the manifest into outDir and
// returns the manifest path.
func (e *Exporter) Export(placements []Placement, outDir string) (string, error) {
	if len(placements) == 0 {
		return "", ErrNoOutlines
	}
	filesys := e.FS
	if filesys == nil {
		filesys = fsutil.OS{}
	}

	bySheet := make(map[int][]Placement)
	for _, pl := range placements {
		bySheet[pl.Sheet] = append(bySheet[pl.Sheet], pl)
	}
	sheets := make([]int, 0, len(bySheet))
	for idx := range bySheet {
		sheets = append(sheets, idx)
	}
	sort.Ints(sheets)

	// Assemble everything before the first write.
	files := make(map[string][]byte, len(sheets)+1)
	for _, idx := range sheets {
		if idx >= len(e.Sheets) {
			return "", fmt.Errorf("nesting: placement references sheet %d but only %d sheets configured", idx, len(e.Sheets))
		}
		name := filepath.Join(outDir, fmt.Sprintf("nested_sheet_%d.svg", idx))
		files[name] = e.renderSheet(e.Sheets[idx], bySheet[idx])
	}

	manifest, err := e.renderManifest(placements)
	if err != nil {
		return "", err
	}
	manifestPath := filepath.Join(outDir, manifestName)
	files[manifestPath] = manifest

	if err := filesys.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("nesting: create output dir: %w", err)
	}
	for name, data := range files {
		if err := filesys.WriteFile(name, data, os.FileMode(0o644)); err != nil {
			return "", fmt.Errorf("nesting: write %s: %w", name, err)
		}
	}
	return manifestPath, nil
}

func (e *Exporter) renderSheet(sheet StockSheet, placements []Placement) []byte {
	doc := newSVGDoc(sheet.Width, sheet.Height)

	doc.openLayer("STOCK")
	doc.rect(0, 0, sheet.Width, sheet.Height)
	doc.closeLayer()

	doc.openLayer("PARTS")
	for _, pl := range placements {
		doc.polygon(pl.PlacedProfile())
	}
	doc.closeLayer()

	e.renderRelief(doc, "DOGBONE", e.DogboneRadius, placements)
	e.renderRelief(doc, "FILLET", e.FilletRadius, placements)

	doc.openLayer("ENGRAVE_LABELS")
	for _, pl := range placements {
		at := pl.LabelPosition()
		doc.text(at, 0.25, pl.Outline.Name)
		// Engraving tick marks the label origin for the engraver.
		doc.line(at, r2.Vec{X: at.X, Y: at.Y - e.EngravingDepth})
	}
	doc.closeLayer()

	if e.IncludeGrainArrows {
		doc.openLayer("GRAIN_DIRECTION")
		for _, pl := range placements {
			e.renderGrainArrow(doc, pl)
		}
		doc.closeLayer()

		doc.openLayer("SHEET_GRAIN")
		e.renderSheetGrain(doc)
		doc.closeLayer()
	}

	return doc.finish()
}

// renderRelief draws corner relief circles at the four bounding-box corners
// of each placed part.
func (e *Exporter) renderRelief(doc *svgDoc, layer string, radius float64, placements []Placement) {
	if radius <= 0 {
		return
	}
	doc.openLayer(layer)
	for _, pl := range placements {
		w, h := pl.PlacedWidth(), pl.PlacedHeight()
		corners := []r2.Vec{
			pl.Origin,
			{X: pl.Origin.X + w, Y: pl.Origin.Y},
			{X: pl.Origin.X + w, Y: pl.Origin.Y + h},
			{X: pl.Origin.X, Y: pl.Origin.Y + h},
		}
		for _, c := range corners {
			doc.circle(c, radius)
		}
	}
	doc.closeLayer()
}

func (e *Exporter) renderGrainArrow(doc *svgDoc, pl Placement) {
	if pl.Outline.Grain == GrainNone {
		return
	}
	const arrowLength = 1.5
	const headSize = 0.25

	center := pl.LabelPosition()
	angle := pl.GrainAngleOnSheet() * math.Pi / 180
	dir := r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}

	tail := r2.Sub(center, r2.Scale(arrowLength/2, dir))
	head := r2.Add(center, r2.Scale(arrowLength/2, dir))
	doc.line(tail, head)

	// Arrowhead barbs 30° off the shaft.
	for _, barb := range []float64{150, -150} {
		a := angle + barb*math.Pi/180
		doc.line(head, r2.Add(head, r2.Scale(headSize, r2.Vec{X: math.Cos(a), Y: math.Sin(a)})))
	}
}

func (e *Exporter) renderSheetGrain(doc *svgDoc) {
	const length = 3.0
	origin := r2.Vec{X: 1, Y: 1}
	angle := e.SheetGrainDeg * math.Pi / 180
	tip := r2.Add(origin, r2.Scale(length, r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}))
	doc.line(origin, tip)
	doc.text(r2.Vec{X: origin.X + 1, Y: origin.Y - 0.5}, 0.25, "SHEET GRAIN")
}

func (e *Exporter) renderManifest(placements []Placement) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(manifestHeader); err != nil {
		return nil, err
	}
	for _, pl := range placements {
		row := []string{
			fmt.Sprintf("%d", pl.Sheet),
			pl.Outline.Name,
			fmt.Sprintf("%.3f", pl.Origin.X),
			fmt.Sprintf("%.3f", pl.Origin.Y),
			fmt.Sprintf("%.3f", pl.PlacedWidth()),
			fmt.Sprintf("%.3f", pl.PlacedHeight()),
			fmt.Sprintf("%.0f", pl.RotationDeg),
			pl.Outline.Laminate,
			pl.GrainNote(),
			strings.Join(e.cutOrder(pl.Outline.Laminate), " > "),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Exporter) cutOrder(laminate string) []string {
	if steps, ok := e.CutOrders[laminate]; ok && len(steps) > 0 {
		return steps
	}
	return []string{"ENGRAVE", "POCKET", "PROFILE"}
}
