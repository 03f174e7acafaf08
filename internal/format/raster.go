package format

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/turtacn/molsearch/internal/domain/chem"
)

// RenderPNG draws a 2D depiction and encodes it as PNG bytes.  The bitmap
// font avoids any font-file dependency at runtime.
func RenderPNG(m *chem.Mol, width, height int) ([]byte, error) {
	d := newDepiction(m, width, height)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1.5)
	for _, b := range d.bonds {
		x1, y1 := d.coords[b.From][0], d.coords[b.From][1]
		x2, y2 := d.coords[b.To][0], d.coords[b.To][1]
		for _, off := range strokeOffsets(b) {
			ox, oy := perpOffset(x1, y1, x2, y2, off)
			dc.DrawLine(x1+ox, y1+oy, x2+ox, y2+oy)
			dc.Stroke()
		}
	}

	dc.SetFontFace(basicfont.Face7x13)
	for i, label := range d.labels {
		if label == "" {
			continue
		}
		x, y := d.coords[i][0], d.coords[i][1]
		dc.SetRGB(1, 1, 1)
		dc.DrawCircle(x, y, 9)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(label, x, y, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("format: png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// PNGDataURI renders a depiction as a data URI suitable for inline embedding
// in search and validate responses.
func PNGDataURI(m *chem.Mol, width, height int) (string, error) {
	png, err := RenderPNG(m, width, height)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Thumbnail renders the standard inline SVG depiction for API responses.
func Thumbnail(m *chem.Mol) string {
	return RenderSVG(m, ThumbnailWidth, ThumbnailHeight)
}
