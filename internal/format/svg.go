package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/turtacn/molsearch/internal/domain/chem"
)

// RenderSVG draws a 2D depiction as an inline SVG document.  Bonds are black
// strokes (doubled or tripled for higher orders), heteroatoms get element
// labels on a small white halo.
func RenderSVG(m *chem.Mol, width, height int) string {
	d := newDepiction(m, width, height)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height)
	sb.WriteString(`<rect width="100%" height="100%" fill="white"/>`)

	for _, b := range d.bonds {
		x1, y1 := d.coords[b.From][0], d.coords[b.From][1]
		x2, y2 := d.coords[b.To][0], d.coords[b.To][1]
		for _, off := range strokeOffsets(b) {
			ox, oy := perpOffset(x1, y1, x2, y2, off)
			fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black" stroke-width="1.5"/>`,
				x1+ox, y1+oy, x2+ox, y2+oy)
		}
	}

	for i, label := range d.labels {
		if label == "" {
			continue
		}
		x, y := d.coords[i][0], d.coords[i][1]
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="9" fill="white"/>`, x, y)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="12">%s</text>`,
			x, y, label)
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// strokeOffsets returns the perpendicular offsets for one bond stroke per
// bond order.
func strokeOffsets(b chem.Bond) []float64 {
	switch {
	case b.Order == 3:
		return []float64{-3, 0, 3}
	case b.Order == 2:
		return []float64{-2, 2}
	default:
		return []float64{0}
	}
}

// perpOffset converts a scalar offset into a vector perpendicular to the
// bond axis.
func perpOffset(x1, y1, x2, y2, off float64) (float64, float64) {
	if off == 0 {
		return 0, 0
	}
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		return 0, 0
	}
	return -dy / length * off, dx / length * off
}
