package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormula_HillOrder(t *testing.T) {
	tests := []struct {
		name    string
		smiles  string
		formula string
	}{
		{"ethanol", "CCO", "C2H6O"},
		{"benzene", "c1ccccc1", "C6H6"},
		{"acetic acid", "CC(=O)O", "C2H4O2"},
		{"pyridine", "c1ccncc1", "C5H5N"},
		{"chloroform", "ClC(Cl)Cl", "CHCl3"},
		{"salt without carbon", "[Na+].[Cl-]", "ClNa"},
		{"ammonium", "[NH4+]", "H4N"},
		{"methane", "C", "CH4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.formula, mustParse(t, tt.smiles).Formula())
		})
	}
}

func TestMolecularWeight(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		weight float64
	}{
		{"ethanol", "CCO", 46.07},
		{"benzene", "c1ccccc1", 78.11},
		{"water", "O", 18.02},
		{"sodium chloride", "[Na+].[Cl-]", 58.44},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.weight, mustParse(t, tt.smiles).MolecularWeight(), 0.01)
		})
	}
}

func TestRingCount(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		rings  int
	}{
		{"chain", "CCCC", 0},
		{"benzene", "c1ccccc1", 1},
		{"naphthalene", "c1ccc2ccccc2c1", 2},
		{"biphenyl", "c1ccc(-c2ccccc2)cc1", 2},
		{"two fragments", "C1CC1.C1CC1", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rings, mustParse(t, tt.smiles).RingCount())
		})
	}
}

func TestRingBonds(t *testing.T) {
	m := mustParse(t, "CC1CC1")
	ring := m.RingBonds()
	require.Len(t, ring, 4)

	// The methyl bond is acyclic, the three ring bonds are not.
	methyl := m.BondBetween(0, 1)
	assert.False(t, ring[methyl])
	total := 0
	for _, r := range ring {
		if r {
			total++
		}
	}
	assert.Equal(t, 3, total)
}

func TestAddBond_Rejects(t *testing.T) {
	m := NewMol()
	a := m.AddAtom(Atom{Element: "C", AtomicNum: 6, ExplicitH: -1})
	b := m.AddAtom(Atom{Element: "C", AtomicNum: 6, ExplicitH: -1})

	assert.Error(t, m.AddBond(a, a, 1, false))
	assert.Error(t, m.AddBond(a, 5, 1, false))
	require.NoError(t, m.AddBond(a, b, 1, false))
	assert.Error(t, m.AddBond(b, a, 1, false))
}

func TestAddHydrogens(t *testing.T) {
	m := mustParse(t, "CCO")
	full := m.AddHydrogens()

	assert.Len(t, full.Atoms, 9)
	assert.Len(t, full.Bonds, 8)
	assert.Equal(t, 3, full.HeavyAtomCount())

	// Formula and weight are unchanged by materialising hydrogens.
	assert.Equal(t, "C2H6O", full.Formula())
	assert.InDelta(t, m.MolecularWeight(), full.MolecularWeight(), 0.001)

	// The original is untouched.
	assert.Len(t, m.Atoms, 3)
	assert.Equal(t, 3, m.TotalHCount(0))
	assert.Equal(t, 3, full.TotalHCount(0))
}

func TestHeavyAtomCount(t *testing.T) {
	assert.Equal(t, 3, mustParse(t, "CCO").HeavyAtomCount())
	assert.Equal(t, 6, mustParse(t, "c1ccccc1").HeavyAtomCount())
}
