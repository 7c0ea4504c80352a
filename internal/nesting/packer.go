package nesting

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNoOutlines is returned when Pack is called with nothing to place.
var ErrNoOutlines = errors.New("nesting: empty outline set")

// ErrNoSheets is returned when a Packer has no stock configured.
var ErrNoSheets = errors.New("nesting: no stock sheets configured")

// CapacityError reports that the supplied stock sheets were exhausted before
// every outline unit was placed. Parts are never silently dropped.
type CapacityError struct {
	Part   string // first outline that could not be placed
	Sheets int    // number of sheets that were available
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("nesting: %d stock sheets exhausted placing %q", e.Sheets, e.Part)
}

// Packer performs largest-first shelf packing over an ordered list of stock
// sheets. The contract is "first sheet-fit under largest-first ordering",
// not minimal sheet count: a single deterministic pass with no backtracking.
type Packer struct {
	Sheets  []StockSheet
	Margin  float64
	Spacing float64

	// SheetGrainDeg is the stock grain direction, degrees from horizontal.
	SheetGrainDeg float64

	// RespectGrain enables grain-aware 90° rotation. When false every part
	// is placed unrotated.
	RespectGrain bool
}

// Pack expands each outline by quantity and assigns every unit a Placement.
// Outlines are processed in descending max(width, height) order; ties keep
// input order so repeated runs over the same input are identical.
func (pk *Packer) Pack(outlines []Outline) ([]Placement, error) {
	if len(outlines) == 0 {
		return nil, ErrNoOutlines
	}
	if len(pk.Sheets) == 0 {
		return nil, ErrNoSheets
	}

	sorted := make([]Outline, len(outlines))
	copy(sorted, outlines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Max(sorted[i].Width, sorted[i].Height) >
			math.Max(sorted[j].Width, sorted[j].Height)
	})

	var placements []Placement
	sheet := 0
	sheetDim := pk.Sheets[sheet]
	cursorX := pk.Margin
	cursorY := pk.Margin
	rowHeight := 0.0

	for _, outline := range sorted {
		qty := outline.Quantity
		if qty < 1 {
			qty = 1
		}
		for unit := 0; unit < qty; unit++ {
			rotation := 0.0
			if pk.RespectGrain {
				rotation = pk.requiredRotation(outline)
			}
			partW, partH := outline.Width, outline.Height
			if rotation == 90 {
				partW, partH = partH, partW
			}

			// Wrap to a new row when the footprint exceeds the remaining
			// row width.
			if cursorX+partW+pk.Margin > sheetDim.Width {
				cursorX = pk.Margin
				cursorY += rowHeight + pk.Spacing
				rowHeight = 0
			}

			// Advance to the next sheet when vertical space is exhausted.
			if cursorY+partH+pk.Margin > sheetDim.Height {
				sheet++
				if sheet >= len(pk.Sheets) {
					return nil, &CapacityError{Part: outline.Name, Sheets: len(pk.Sheets)}
				}
				sheetDim = pk.Sheets[sheet]
				cursorX = pk.Margin
				cursorY = pk.Margin
				rowHeight = 0
			}

			placements = append(placements, Placement{
				Outline:     outline,
				Sheet:       sheet,
				Origin:      r2.Vec{X: cursorX, Y: cursorY},
				RotationDeg: rotation,
			})
			cursorX += partW + pk.Spacing
			if partH > rowHeight {
				rowHeight = partH
			}
		}
	}
	return placements, nil
}

// requiredRotation picks whichever of {0°, 90°} best aligns the outline's
// load path with its grain target, modulo the 180° periodicity of grain
// lines: a deviation under 45° (or over 135°) is already close enough to
// leave the part unrotated.
func (pk *Packer) requiredRotation(o Outline) float64 {
	var target float64
	switch o.Grain {
	case GrainParallel:
		target = pk.SheetGrainDeg
	case GrainPerpendicular:
		target = math.Mod(pk.SheetGrainDeg+90, 180)
	case GrainSpecific:
		target = o.GrainAngleDeg
	default:
		return 0
	}

	diff := math.Mod(target-o.LoadDirectionDeg, 180)
	if diff < 0 {
		diff += 180
	}
	if diff < 45 || diff > 135 {
		return 0
	}
	return 90
}
