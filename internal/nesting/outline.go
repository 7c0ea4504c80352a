// Package nesting plans 2D sheet layouts: it places part outlines on stock
// sheets with a deterministic greedy shelf packer, honors material grain
// constraints, and exports per-sheet vector layouts plus a CSV manifest for
// CAM import.
package nesting

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/open-ez/foamcam/internal/geom"
)

// GrainConstraint is a material grain/fiber orientation rule. For plywood
// the face grain should align with the primary load path; for foam sheet
// the cell elongation direction affects bending stiffness.
type GrainConstraint int

const (
	// GrainNone places the part without regard to grain.
	GrainNone GrainConstraint = iota
	// GrainParallel aligns the part's load path with the sheet grain.
	GrainParallel
	// GrainPerpendicular aligns the load path 90° from the sheet grain.
	GrainPerpendicular
	// GrainSpecific targets an explicit angle (Outline.GrainAngleDeg).
	GrainSpecific
)

func (g GrainConstraint) String() string {
	switch g {
	case GrainParallel:
		return "parallel"
	case GrainPerpendicular:
		return "perpendicular"
	case GrainSpecific:
		return "specific"
	default:
		return "none"
	}
}

// ParseGrainConstraint resolves the configuration spelling of a constraint.
func ParseGrainConstraint(s string) (GrainConstraint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return GrainNone, nil
	case "parallel":
		return GrainParallel, nil
	case "perpendicular":
		return GrainPerpendicular, nil
	case "specific":
		return GrainSpecific, nil
	default:
		return GrainNone, fmt.Errorf("nesting: unknown grain constraint %q", s)
	}
}

// MarshalJSON encodes the constraint as its string form.
func (g GrainConstraint) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

// UnmarshalJSON decodes the string form.
func (g *GrainConstraint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseGrainConstraint(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Outline is a named part footprint to be nested. Width and height are the
// part's axis-aligned extents in its own frame; Points optionally carries
// the source profile (local coordinates, origin at the lower-left corner)
// so the exporter can draw true geometry instead of the bounding rectangle.
type Outline struct {
	Name     string       `json:"name"`
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	Quantity int          `json:"quantity"`
	Laminate string       `json:"laminate,omitempty"`
	Points   geom.Profile `json:"points,omitempty"`

	Grain GrainConstraint `json:"grain,omitempty"`
	// GrainAngleDeg is the target angle for GrainSpecific, degrees from
	// horizontal.
	GrainAngleDeg float64 `json:"grain_angle_deg,omitempty"`
	// LoadDirectionDeg is the part's primary load path direction, degrees
	// from horizontal in the part frame.
	LoadDirectionDeg float64 `json:"load_direction_deg,omitempty"`
}

// StockSheet is one fixed-size piece of stock. Sheets are consumed in the
// order supplied; running out is an explicit capacity failure.
type StockSheet struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Placement assigns one outline unit to a sheet position. Placements are
// immutable once created; the exporter only reads them.
type Placement struct {
	Outline     Outline
	Sheet       int
	Origin      r2.Vec
	RotationDeg float64 // 0 or 90
}

// PlacedWidth is the footprint width after rotation.
func (p Placement) PlacedWidth() float64 {
	if p.RotationDeg == 90 {
		return p.Outline.Height
	}
	return p.Outline.Width
}

// PlacedHeight is the footprint height after rotation.
func (p Placement) PlacedHeight() float64 {
	if p.RotationDeg == 90 {
		return p.Outline.Width
	}
	return p.Outline.Height
}

// GrainAngleOnSheet is the part's grain direction after placement rotation,
// reduced modulo the 180° periodicity of grain lines.
func (p Placement) GrainAngleOnSheet() float64 {
	return math.Mod(p.Outline.GrainAngleDeg+p.RotationDeg, 180)
}

// LabelPosition is the center of the placed footprint.
func (p Placement) LabelPosition() r2.Vec {
	return r2.Vec{
		X: p.Origin.X + p.PlacedWidth()/2,
		Y: p.Origin.Y + p.PlacedHeight()/2,
	}
}

// GrainNote is the operator-facing grain compliance note recorded in the
// manifest.
func (p Placement) GrainNote() string {
	if p.Outline.Grain == GrainNone {
		return "No constraint"
	}
	dir := p.GrainAngleOnSheet()
	switch {
	case math.Abs(dir) < 5 || math.Abs(dir-180) < 5:
		return "Grain horizontal (0°)"
	case math.Abs(dir-90) < 5:
		return "Grain vertical (90°)"
	default:
		return fmt.Sprintf("Grain at %.1f°", dir)
	}
}

// PlacedProfile returns the part's source geometry rotated and translated
// into sheet coordinates. Parts without source points get their bounding
// rectangle.
func (p Placement) PlacedProfile() geom.Profile {
	pts := p.Outline.Points
	if len(pts) == 0 {
		pts = geom.Profile{
			{X: 0, Y: 0},
			{X: p.Outline.Width, Y: 0},
			{X: p.Outline.Width, Y: p.Outline.Height},
			{X: 0, Y: p.Outline.Height},
		}
	}
	out := make(geom.Profile, len(pts))
	for i, q := range pts {
		if p.RotationDeg == 90 {
			// Quarter turn about the part origin, shifted back into the
			// positive quadrant: (x, y) -> (h - y, x).
			q = r2.Vec{X: p.Outline.Height - q.Y, Y: q.X}
		}
		out[i] = r2.Add(q, p.Origin)
	}
	return out
}
