package format

import (
	"bytes"
	"fmt"

	"github.com/turtacn/molsearch/internal/domain/chem"
)

// WritePDB serialises the conformer as a minimal PDB file: one HETATM record
// per atom in a single LIG residue, CONECT records for every bond, and END.
func WritePDB(m *chem.Mol, coords [][3]float64) ([]byte, error) {
	if len(coords) != len(m.Atoms) {
		return nil, fmt.Errorf("format: %d coordinates for %d atoms", len(coords), len(m.Atoms))
	}
	if len(m.Atoms) > 99999 {
		return nil, fmt.Errorf("format: structure exceeds PDB atom serial limit (%d atoms)", len(m.Atoms))
	}

	var buf bytes.Buffer
	buf.WriteString("COMPND    MOLSEARCH EXPORT\n")

	for i, a := range m.Atoms {
		name := fmt.Sprintf("%s%d", a.Element, i+1)
		if len(name) > 4 {
			name = name[:4]
		}
		fmt.Fprintf(&buf, "HETATM%5d %-4s LIG A   1    %8.3f%8.3f%8.3f  1.00  0.00          %2s\n",
			i+1, name, coords[i][0], coords[i][1], coords[i][2], a.Element)
	}

	for i := range m.Atoms {
		neighbors := m.Neighbors(i)
		if len(neighbors) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "CONECT%5d", i+1)
		for _, j := range neighbors {
			fmt.Fprintf(&buf, "%5d", j+1)
		}
		buf.WriteByte('\n')
	}

	buf.WriteString("END\n")
	return buf.Bytes(), nil
}
