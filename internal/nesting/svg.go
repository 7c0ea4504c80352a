package nesting

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/open-ez/foamcam/internal/geom"
)

// svgDoc assembles a sheet layout as SVG text. CAM imports rely on the
// named layer groups (`<g id="DOGBONE">` etc), which is why the document is
// written directly instead of through a plotting canvas. The coordinate
// frame is CAD-style (origin lower-left, Y up); flipY converts per
// primitive since SVG's Y axis points down.
type svgDoc struct {
	b      strings.Builder
	height float64
}

func newSVGDoc(width, height float64) *svgDoc {
	d := &svgDoc{height: height}
	fmt.Fprintf(&d.b, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(&d.b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%.3fin" height="%.3fin" viewBox="0 0 %.3f %.3f">`+"\n",
		width, height, width, height)
	return d
}

func (d *svgDoc) flipY(y float64) float64 { return d.height - y }

func (d *svgDoc) openLayer(id string) {
	fmt.Fprintf(&d.b, `  <g id="%s" fill="none" stroke="%s" stroke-width="0.02">`+"\n",
		id, layerColor(id))
}

func (d *svgDoc) closeLayer() {
	d.b.WriteString("  </g>\n")
}

func (d *svgDoc) rect(x, y, w, h float64) {
	fmt.Fprintf(&d.b, `    <rect x="%.4f" y="%.4f" width="%.4f" height="%.4f"/>`+"\n",
		x, d.flipY(y+h), w, h)
}

func (d *svgDoc) polygon(p geom.Profile) {
	var pts []string
	for _, q := range p {
		pts = append(pts, fmt.Sprintf("%.4f,%.4f", q.X, d.flipY(q.Y)))
	}
	fmt.Fprintf(&d.b, `    <polygon points="%s"/>`+"\n", strings.Join(pts, " "))
}

func (d *svgDoc) circle(c r2.Vec, r float64) {
	fmt.Fprintf(&d.b, `    <circle cx="%.4f" cy="%.4f" r="%.4f"/>`+"\n", c.X, d.flipY(c.Y), r)
}

func (d *svgDoc) line(a, b r2.Vec) {
	fmt.Fprintf(&d.b, `    <line x1="%.4f" y1="%.4f" x2="%.4f" y2="%.4f"/>`+"\n",
		a.X, d.flipY(a.Y), b.X, d.flipY(b.Y))
}

func (d *svgDoc) text(at r2.Vec, size float64, s string) {
	fmt.Fprintf(&d.b,
		`    <text x="%.4f" y="%.4f" font-size="%.3f" text-anchor="middle" stroke="none" fill="%s">%s</text>`+"\n",
		at.X, d.flipY(at.Y), size, layerColor("ENGRAVE_LABELS"), escapeXML(s))
}

func (d *svgDoc) finish() []byte {
	d.b.WriteString("</svg>\n")
	return []byte(d.b.String())
}

// layerColor follows shop DXF conventions: green grain arrows, blue sheet
// grain reference, red relief features, black geometry.
func layerColor(layer string) string {
	switch layer {
	case "GRAIN_DIRECTION":
		return "#008000"
	case "SHEET_GRAIN":
		return "#0000ff"
	case "DOGBONE", "FILLET":
		return "#ff0000"
	default:
		return "#000000"
	}
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
