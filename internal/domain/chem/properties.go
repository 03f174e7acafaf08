package chem

import (
	"math"

	apperrors "github.com/turtacn/molsearch/pkg/errors"
	moltypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// Lipinski rule-of-five bounds.  All comparisons are inclusive: a molecule
// sitting exactly on a bound still complies.
const (
	LipinskiMaxLogP      = 5.0
	LipinskiMaxDonors    = 5
	LipinskiMaxAcceptors = 10
	LipinskiMaxWeight    = 500.0
)

// CalculateProperties computes the full descriptor set for a molecule.  The
// calculation is all-or-nothing: any failure returns an error and no partial
// result.
func CalculateProperties(m *Mol) (*moltypes.MolecularProperties, error) {
	if len(m.Atoms) == 0 {
		return nil, apperrors.New(apperrors.ErrCodePropertyCalcFailed, "cannot compute properties of an empty structure")
	}

	weight := m.MolecularWeight()
	logP := LogP(m)
	tpsa := TPSA(m)
	donors := HBondDonors(m)
	acceptors := HBondAcceptors(m)

	props := &moltypes.MolecularProperties{
		MolecularWeight:   round2(weight),
		Formula:           m.Formula(),
		LogP:              round2(logP),
		TPSA:              round2(tpsa),
		HBondDonors:       donors,
		HBondAcceptors:    acceptors,
		RotatableBonds:    RotatableBonds(m),
		RingCount:         m.RingCount(),
		HeavyAtomCount:    m.HeavyAtomCount(),
		LipinskiCompliant: logP <= LipinskiMaxLogP && donors <= LipinskiMaxDonors && acceptors <= LipinskiMaxAcceptors && weight <= LipinskiMaxWeight,
	}
	return props, nil
}

// LogP estimates the octanol/water partition coefficient from additive atom
// contributions, an approximation in the spirit of Wildman-Crippen.
func LogP(m *Mol) float64 {
	sum := 0.0
	for i, a := range m.Atoms {
		sum += logPContribution(a)
		sum += float64(m.ImplicitHCount(i)) * 0.12
	}
	return sum
}

func logPContribution(a Atom) float64 {
	switch a.Element {
	case "C":
		if a.Aromatic {
			return 0.29
		}
		return 0.19
	case "N":
		if a.Aromatic {
			return -0.53
		}
		return -0.60
	case "O":
		return -0.41
	case "S":
		return 0.25
	case "P":
		return -0.50
	case "F":
		return 0.21
	case "Cl":
		return 0.52
	case "Br":
		return 0.73
	case "I":
		return 1.00
	case "B":
		return -0.10
	case "H":
		return 0.12
	default:
		return 0.0
	}
}

// TPSA estimates the topological polar surface area from per-atom fragment
// contributions over nitrogen, oxygen, sulfur, and phosphorus.
func TPSA(m *Mol) float64 {
	sum := 0.0
	for i, a := range m.Atoms {
		sum += tpsaContribution(m, i, a)
	}
	return sum
}

func tpsaContribution(m *Mol, i int, a Atom) float64 {
	h := m.TotalHCount(i)
	switch a.Element {
	case "O":
		if a.Aromatic {
			return 13.14
		}
		if m.hasDoubleBond(i) {
			return 17.07
		}
		if h > 0 {
			return 20.23
		}
		return 9.23
	case "N":
		if a.Aromatic {
			if h > 0 {
				return 15.79
			}
			return 12.89
		}
		if m.hasTripleBond(i) {
			return 23.79
		}
		switch {
		case h >= 2:
			return 26.02
		case h == 1:
			return 12.03
		default:
			return 3.24
		}
	case "S":
		if a.Aromatic {
			return 28.24
		}
		return 25.30
	case "P":
		return 13.59
	default:
		return 0.0
	}
}

func (m *Mol) hasDoubleBond(i int) bool {
	for _, bi := range m.adj[i] {
		if m.Bonds[bi].Order == 2 {
			return true
		}
	}
	return false
}

func (m *Mol) hasTripleBond(i int) bool {
	for _, bi := range m.adj[i] {
		if m.Bonds[bi].Order == 3 {
			return true
		}
	}
	return false
}

// HBondDonors counts nitrogen and oxygen atoms carrying at least one
// hydrogen.
func HBondDonors(m *Mol) int {
	n := 0
	for i, a := range m.Atoms {
		if (a.Element == "N" || a.Element == "O") && m.TotalHCount(i) > 0 {
			n++
		}
	}
	return n
}

// HBondAcceptors counts all nitrogen and oxygen atoms.
func HBondAcceptors(m *Mol) int {
	n := 0
	for _, a := range m.Atoms {
		if a.Element == "N" || a.Element == "O" {
			n++
		}
	}
	return n
}

// RotatableBonds counts non-ring single bonds between two non-terminal heavy
// atoms.
func RotatableBonds(m *Mol) int {
	ringBonds := m.RingBonds()
	n := 0
	for bi, b := range m.Bonds {
		if b.Order != 1 || b.Aromatic || ringBonds[bi] {
			continue
		}
		if m.Atoms[b.From].Element == "H" || m.Atoms[b.To].Element == "H" {
			continue
		}
		if m.heavyDegree(b.From) < 2 || m.heavyDegree(b.To) < 2 {
			continue
		}
		n++
	}
	return n
}

func (m *Mol) heavyDegree(i int) int {
	n := 0
	for _, j := range m.Neighbors(i) {
		if m.Atoms[j].Element != "H" {
			n++
		}
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
