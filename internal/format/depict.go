package format

import (
	"github.com/turtacn/molsearch/internal/domain/chem"
)

// depiction is a 2D drawing plan shared by the SVG and PNG renderers: pixel
// coordinates per atom, plus which atoms get an element label (heteroatoms
// and lone atoms; carbons in a skeleton are drawn bare).
type depiction struct {
	width, height int
	coords        [][2]float64
	labels        []string
	bonds         []chem.Bond
}

const depictionMargin = 30.0

// newDepiction lays the molecule out and scales it into the canvas.
func newDepiction(m *chem.Mol, width, height int) *depiction {
	raw := chem.Layout2D(m)
	d := &depiction{
		width:  width,
		height: height,
		coords: scaleToCanvas(raw, float64(width), float64(height), depictionMargin),
		labels: make([]string, len(m.Atoms)),
		bonds:  m.Bonds,
	}
	for i, a := range m.Atoms {
		if a.IsHeteroatom() || m.Degree(i) == 0 {
			label := a.Element
			if h := m.ImplicitHCount(i); h > 0 && a.Element != "C" {
				label += "H"
				if h > 1 {
					label += string(rune('0' + h))
				}
			}
			d.labels[i] = label
		}
	}
	return d
}

// scaleToCanvas maps layout coordinates into pixel space, preserving aspect
// ratio and centring the structure.
func scaleToCanvas(raw [][2]float64, width, height, margin float64) [][2]float64 {
	out := make([][2]float64, len(raw))
	if len(raw) == 0 {
		return out
	}

	minX, maxX := raw[0][0], raw[0][0]
	minY, maxY := raw[0][1], raw[0][1]
	for _, c := range raw {
		if c[0] < minX {
			minX = c[0]
		}
		if c[0] > maxX {
			maxX = c[0]
		}
		if c[1] < minY {
			minY = c[1]
		}
		if c[1] > maxY {
			maxY = c[1]
		}
	}

	spanX := maxX - minX
	spanY := maxY - minY
	scale := 1.0
	if spanX > 0 || spanY > 0 {
		sx := (width - 2*margin) / maxf(spanX, 1e-9)
		sy := (height - 2*margin) / maxf(spanY, 1e-9)
		scale = minf(sx, sy)
	}

	offX := (width - spanX*scale) / 2
	offY := (height - spanY*scale) / 2
	for i, c := range raw {
		out[i] = [2]float64{
			(c[0]-minX)*scale + offX,
			(c[1]-minY)*scale + offY,
		}
	}
	return out
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
