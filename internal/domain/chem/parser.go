package chem

import (
	"fmt"
	"strings"

	apperrors "github.com/turtacn/molsearch/pkg/errors"
)

// ringClosure remembers the first endpoint of a numbered ring bond until the
// matching digit closes it.
type ringClosure struct {
	atom  int
	order int
}

// parser walks a SMILES string left to right building a Mol.
type parser struct {
	input string
	pos   int

	mol      *Mol
	prev     int // index of the previous atom, -1 at a chain start
	order    int // pending bond order for the next atom, 0 = default
	aromatic bool
	rings    map[int]ringClosure
	stack    []int
}

// ParseSMILES parses a SMILES string into a molecular graph.  The supported
// grammar covers the organic subset, aromatic lowercase atoms, bracket atom
// expressions, branches, numbered ring closures (including %nn), and
// dot-separated fragments.  Stereo bond markers (/ and \) are accepted and
// treated as single bonds.  Kekulé-form aromatic rings are normalised to the
// aromatic representation, so C1=CC=CC=C1 and c1ccccc1 parse identically.
func ParseSMILES(smiles string) (*Mol, error) {
	s := strings.TrimSpace(smiles)
	if s == "" {
		return nil, apperrors.InvalidStructure("empty SMILES string")
	}
	p := &parser{
		input: s,
		mol:   NewMol(),
		prev:  -1,
		rings: map[int]ringClosure{},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	perceiveAromaticity(p.mol)
	return p.mol, nil
}

func (p *parser) errf(format string, args ...interface{}) error {
	detail := fmt.Sprintf(format, args...)
	return apperrors.InvalidStructure(fmt.Sprintf("%s (position %d in %q)", detail, p.pos, p.input))
}

func (p *parser) run() error {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '-':
			p.order = 1
			p.pos++
		case c == '=':
			p.order = 2
			p.pos++
		case c == '#':
			p.order = 3
			p.pos++
		case c == ':':
			p.order = 1
			p.aromatic = true
			p.pos++
		case c == '/' || c == '\\':
			// Cis/trans markers degrade to plain single bonds.
			p.order = 1
			p.pos++
		case c == '(':
			if p.prev < 0 {
				return p.errf("branch opened before any atom")
			}
			p.stack = append(p.stack, p.prev)
			p.pos++
		case c == ')':
			if len(p.stack) == 0 {
				return p.errf("unmatched closing parenthesis")
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pos++
		case c == '.':
			if p.order != 0 {
				return p.errf("bond symbol before dot separator")
			}
			p.prev = -1
			p.pos++
		case c >= '0' && c <= '9':
			if err := p.closeRing(int(c - '0')); err != nil {
				return err
			}
			p.pos++
		case c == '%':
			if p.pos+2 >= len(p.input) || !isDigit(p.input[p.pos+1]) || !isDigit(p.input[p.pos+2]) {
				return p.errf("%% must be followed by two digits")
			}
			n := int(p.input[p.pos+1]-'0')*10 + int(p.input[p.pos+2]-'0')
			p.pos += 3
			if err := p.closeRing(n); err != nil {
				return err
			}
		case c == '[':
			atom, err := p.parseBracketAtom()
			if err != nil {
				return err
			}
			p.attach(atom)
		default:
			atom, err := p.parseOrganicAtom()
			if err != nil {
				return err
			}
			p.attach(atom)
		}
	}
	if len(p.stack) != 0 {
		return p.errf("unclosed branch")
	}
	if len(p.rings) != 0 {
		nums := make([]int, 0, len(p.rings))
		for n := range p.rings {
			nums = append(nums, n)
		}
		return p.errf("unclosed ring bond %v", nums)
	}
	if len(p.mol.Atoms) == 0 {
		return p.errf("no atoms in input")
	}
	return nil
}

// attach adds the atom and bonds it to the previous one using any pending
// bond symbol.
func (p *parser) attach(a Atom) {
	idx := p.mol.AddAtom(a)
	if p.prev >= 0 {
		order := p.order
		aromatic := p.aromatic
		if order == 0 {
			order = 1
			// Two adjacent aromatic atoms bond aromatically by default.
			if a.Aromatic && p.mol.Atoms[p.prev].Aromatic {
				aromatic = true
			}
		}
		// Errors are impossible here: both endpoints exist and are new.
		_ = p.mol.AddBond(p.prev, idx, order, aromatic)
	}
	p.prev = idx
	p.order = 0
	p.aromatic = false
}

// closeRing opens or closes the numbered ring bond n.
func (p *parser) closeRing(n int) error {
	if p.prev < 0 {
		return p.errf("ring closure digit before any atom")
	}
	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringClosure{atom: p.prev, order: p.order}
		p.order = 0
		p.aromatic = false
		return nil
	}
	delete(p.rings, n)
	order := p.order
	if order == 0 {
		order = open.order
	}
	aromatic := false
	if order == 0 {
		order = 1
		if p.mol.Atoms[open.atom].Aromatic && p.mol.Atoms[p.prev].Aromatic {
			aromatic = true
		}
	}
	if open.atom == p.prev {
		return p.errf("ring bond %d closes on its opening atom", n)
	}
	if err := p.mol.AddBond(open.atom, p.prev, order, aromatic); err != nil {
		return p.errf("ring bond %d: %v", n, err)
	}
	p.order = 0
	p.aromatic = false
	return nil
}

// parseOrganicAtom reads an organic-subset atom: B, C, N, O, P, S, F, Cl,
// Br, I, or an aromatic lowercase letter.
func (p *parser) parseOrganicAtom() (Atom, error) {
	c := p.input[p.pos]

	// Two-character symbols first.
	if p.pos+1 < len(p.input) {
		two := p.input[p.pos : p.pos+2]
		if two == "Cl" || two == "Br" {
			p.pos += 2
			info := elements[two]
			return Atom{Element: two, AtomicNum: info.AtomicNum, ExplicitH: -1}, nil
		}
	}

	sym := string(c)
	if aromaticElements[sym] {
		canon, info, _ := lookupElement(sym)
		p.pos++
		return Atom{Element: canon, AtomicNum: info.AtomicNum, Aromatic: true, ExplicitH: -1}, nil
	}
	switch sym {
	case "B", "C", "N", "O", "P", "S", "F", "I":
		p.pos++
		info := elements[sym]
		return Atom{Element: sym, AtomicNum: info.AtomicNum, ExplicitH: -1}, nil
	}
	return Atom{}, p.errf("unexpected character %q", c)
}

// parseBracketAtom reads a [isotope?symbol chirality?Hcount?charge?] atom
// expression.  Atom-class suffixes (:n) are accepted and ignored.
func (p *parser) parseBracketAtom() (Atom, error) {
	start := p.pos
	p.pos++ // consume '['

	// Isotope.
	isotope := 0
	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		isotope = isotope*10 + int(p.input[p.pos]-'0')
		p.pos++
	}

	// Element symbol: uppercase letter with optional lowercase second letter,
	// or a lowercase aromatic letter.
	if p.pos >= len(p.input) {
		return Atom{}, p.errf("unterminated bracket atom")
	}
	var sym string
	c := p.input[p.pos]
	switch {
	case c >= 'A' && c <= 'Z':
		sym = string(c)
		p.pos++
		if p.pos < len(p.input) && p.input[p.pos] >= 'a' && p.input[p.pos] <= 'z' {
			two := sym + string(p.input[p.pos])
			if _, ok := elements[two]; ok {
				sym = two
				p.pos++
			}
		}
	case aromaticElements[string(c)]:
		sym = string(c)
		p.pos++
	default:
		return Atom{}, p.errf("invalid element in bracket atom %q", p.input[start:])
	}

	aromatic := sym == strings.ToLower(sym)
	canon, info, ok := lookupElement(sym)
	if !ok {
		return Atom{}, p.errf("unknown element %q", sym)
	}

	// Chirality markers are accepted and discarded.
	for p.pos < len(p.input) && p.input[p.pos] == '@' {
		p.pos++
	}

	// Explicit hydrogen count.
	hcount := 0
	hasH := false
	if p.pos < len(p.input) && p.input[p.pos] == 'H' {
		hasH = true
		hcount = 1
		p.pos++
		if p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			hcount = int(p.input[p.pos] - '0')
			p.pos++
		}
	}

	// Formal charge: +, -, ++, --, +n, -n.
	charge := 0
	if p.pos < len(p.input) && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
		sign := 1
		if p.input[p.pos] == '-' {
			sign = -1
		}
		symCh := p.input[p.pos]
		p.pos++
		charge = sign
		if p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			charge = sign * int(p.input[p.pos]-'0')
			p.pos++
		} else {
			for p.pos < len(p.input) && p.input[p.pos] == symCh {
				charge += sign
				p.pos++
			}
		}
	}

	// Atom class.
	if p.pos < len(p.input) && p.input[p.pos] == ':' {
		p.pos++
		if p.pos >= len(p.input) || !isDigit(p.input[p.pos]) {
			return Atom{}, p.errf("atom class must be numeric")
		}
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}
	}

	if p.pos >= len(p.input) || p.input[p.pos] != ']' {
		return Atom{}, p.errf("unterminated bracket atom")
	}
	p.pos++

	explicitH := hcount
	if !hasH {
		explicitH = 0
	}
	return Atom{
		Element:   canon,
		AtomicNum: info.AtomicNum,
		Charge:    charge,
		Isotope:   isotope,
		Aromatic:  aromatic,
		ExplicitH: explicitH,
	}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
