// Package chem implements the pure-Go structure engine: SMILES parsing,
// canonicalisation, identifier derivation, descriptor calculation, and
// coordinate generation.  It has no cgo dependencies; structures are modelled
// as simple atom/bond graphs with implicit hydrogens derived from default
// valences.
package chem

import "strings"

// Atom is one heavy atom (or explicit hydrogen) in a molecular graph.
type Atom struct {
	// Element is the element symbol in canonical case ("C", "Cl", "N").
	Element string

	// AtomicNum is the element's atomic number.
	AtomicNum int

	// Charge is the formal charge.
	Charge int

	// Isotope is the isotope mass number, or 0 for the natural mixture.
	Isotope int

	// Aromatic marks atoms written in lowercase aromatic form.
	Aromatic bool

	// ExplicitH is the hydrogen count given in a bracket atom expression.
	// -1 means "not specified": implicit hydrogens are derived from the
	// default valence instead.
	ExplicitH int
}

// elementInfo carries the per-element constants the engine needs.
type elementInfo struct {
	AtomicNum int
	Mass      float64
	Valence   int // default bonding valence; 0 means "no implicit hydrogens"
}

// elements maps the supported element symbols to their constants.  Average
// atomic masses follow the 2021 IUPAC standard values rounded to three
// decimals.
var elements = map[string]elementInfo{
	"H":  {1, 1.008, 1},
	"B":  {5, 10.811, 3},
	"C":  {6, 12.011, 4},
	"N":  {7, 14.007, 3},
	"O":  {8, 15.999, 2},
	"F":  {9, 18.998, 1},
	"Na": {11, 22.990, 1},
	"Mg": {12, 24.305, 2},
	"Si": {14, 28.086, 4},
	"P":  {15, 30.974, 3},
	"S":  {16, 32.065, 2},
	"Cl": {17, 35.453, 1},
	"K":  {19, 39.098, 1},
	"Ca": {20, 40.078, 2},
	"Fe": {26, 55.845, 0},
	"Zn": {30, 65.380, 0},
	"Br": {35, 79.904, 1},
	"I":  {53, 126.904, 1},
}

// aromaticElements lists the elements that may appear in lowercase aromatic
// form in SMILES input.
var aromaticElements = map[string]bool{
	"b": true, "c": true, "n": true, "o": true, "p": true, "s": true,
}

// lookupElement resolves a symbol (any case) to its canonical form and
// constants.  The boolean reports whether the symbol is known.
func lookupElement(symbol string) (string, elementInfo, bool) {
	if info, ok := elements[symbol]; ok {
		return symbol, info, true
	}
	// Aromatic lowercase single letters.
	if len(symbol) == 1 && aromaticElements[symbol] {
		canon := strings.ToUpper(symbol)
		info, ok := elements[canon]
		return canon, info, ok
	}
	return "", elementInfo{}, false
}

// defaultValence returns the default bonding valence for the atom, adjusted
// for formal charge.  Charged nitrogen gains a bond (N+ binds four), charged
// oxygen loses one (O- binds one).
func (a Atom) defaultValence() int {
	info, ok := elements[a.Element]
	if !ok {
		return 0
	}
	v := info.Valence
	switch a.Element {
	case "N", "P":
		v += a.Charge
	case "O", "S":
		v += a.Charge
	case "C":
		if a.Charge != 0 {
			v -= abs(a.Charge)
		}
	case "B":
		v -= a.Charge
	}
	if v < 0 {
		return 0
	}
	return v
}

// Mass returns the element's average atomic mass.
func (a Atom) Mass() float64 {
	return elements[a.Element].Mass
}

// IsHeteroatom reports whether the atom is neither carbon nor hydrogen.
func (a Atom) IsHeteroatom() bool {
	return a.Element != "C" && a.Element != "H"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
