package format

import (
	"bytes"
	"fmt"

	"github.com/turtacn/molsearch/internal/domain/chem"
)

// WriteSDF serialises the conformer as a V2000 molfile terminated with the
// SDF record separator.  Aromatic bonds are written with the query bond type
// 4, matching common toolkit output.
func WriteSDF(m *chem.Mol, coords [][3]float64) ([]byte, error) {
	if len(coords) != len(m.Atoms) {
		return nil, fmt.Errorf("format: %d coordinates for %d atoms", len(coords), len(m.Atoms))
	}
	if len(m.Atoms) > 999 || len(m.Bonds) > 999 {
		return nil, fmt.Errorf("format: structure exceeds V2000 limits (%d atoms, %d bonds)", len(m.Atoms), len(m.Bonds))
	}

	var buf bytes.Buffer
	buf.WriteString("\n  molsearch3D\n\n")
	fmt.Fprintf(&buf, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", len(m.Atoms), len(m.Bonds))

	for i, a := range m.Atoms {
		fmt.Fprintf(&buf, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n",
			coords[i][0], coords[i][1], coords[i][2], a.Element)
	}
	for _, b := range m.Bonds {
		order := b.Order
		if b.Aromatic {
			order = 4
		}
		fmt.Fprintf(&buf, "%3d%3d%3d  0\n", b.From+1, b.To+1, order)
	}

	// Charge property block; the atom block charge column is deprecated.
	for i, a := range m.Atoms {
		if a.Charge != 0 {
			fmt.Fprintf(&buf, "M  CHG  1%4d%4d\n", i+1, a.Charge)
		}
	}

	buf.WriteString("M  END\n$$$$\n")
	return buf.Bytes(), nil
}
