package chem

import (
	"fmt"
	"sort"
	"strings"
)

// Bond connects two atoms by index.
type Bond struct {
	From, To int

	// Order is the bond order: 1, 2, or 3.  Aromatic bonds carry Order 1
	// with Aromatic set.
	Order int

	Aromatic bool
}

// Mol is a molecular graph.  Atom and bond indices are stable after
// construction; hydrogens are implicit unless added with AddHydrogens.
type Mol struct {
	Atoms []Atom
	Bonds []Bond

	adj [][]int // adjacency: atom index → bond indices
}

// NewMol returns an empty molecular graph.
func NewMol() *Mol {
	return &Mol{}
}

// AddAtom appends an atom and returns its index.
func (m *Mol) AddAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.Atoms) - 1
}

// AddBond appends a bond between two atoms.  Self-bonds and duplicate bonds
// are rejected.
func (m *Mol) AddBond(from, to, order int, aromatic bool) error {
	if from == to {
		return fmt.Errorf("chem: atom %d bonded to itself", from)
	}
	if from < 0 || from >= len(m.Atoms) || to < 0 || to >= len(m.Atoms) {
		return fmt.Errorf("chem: bond references missing atom (%d-%d)", from, to)
	}
	if m.BondBetween(from, to) >= 0 {
		return fmt.Errorf("chem: duplicate bond between atoms %d and %d", from, to)
	}
	m.Bonds = append(m.Bonds, Bond{From: from, To: to, Order: order, Aromatic: aromatic})
	bi := len(m.Bonds) - 1
	m.adj[from] = append(m.adj[from], bi)
	m.adj[to] = append(m.adj[to], bi)
	return nil
}

// BondBetween returns the index of the bond joining a and b, or -1.
func (m *Mol) BondBetween(a, b int) int {
	for _, bi := range m.adj[a] {
		bond := m.Bonds[bi]
		if bond.From == b || bond.To == b {
			return bi
		}
	}
	return -1
}

// Neighbors returns the atom indices adjacent to atom i.
func (m *Mol) Neighbors(i int) []int {
	out := make([]int, 0, len(m.adj[i]))
	for _, bi := range m.adj[i] {
		out = append(out, m.Bonds[bi].other(i))
	}
	return out
}

// Degree returns the number of explicit bonds at atom i.
func (m *Mol) Degree(i int) int {
	return len(m.adj[i])
}

func (b Bond) other(i int) int {
	if b.From == i {
		return b.To
	}
	return b.From
}

// bondOrderSum totals the bond orders at atom i.  Aromatic bonds count as
// order 1; the aromatic π contribution is handled in ImplicitHCount.
func (m *Mol) bondOrderSum(i int) int {
	sum := 0
	for _, bi := range m.adj[i] {
		sum += m.Bonds[bi].Order
	}
	return sum
}

// ImplicitHCount returns the number of implicit hydrogens on atom i.
// Bracket atoms carry their explicit count; otherwise the count is the
// default valence minus the bond order sum, with one extra unit subtracted
// for aromatic atoms to account for the delocalised π bond.
func (m *Mol) ImplicitHCount(i int) int {
	a := m.Atoms[i]
	if a.Element == "H" {
		return 0
	}
	if a.ExplicitH >= 0 {
		return a.ExplicitH
	}
	v := a.defaultValence()
	used := m.bondOrderSum(i)
	if a.Aromatic {
		used++
	}
	h := v - used
	if h < 0 {
		return 0
	}
	return h
}

// TotalHCount returns implicit hydrogens plus bonded explicit hydrogen atoms.
func (m *Mol) TotalHCount(i int) int {
	h := m.ImplicitHCount(i)
	for _, n := range m.Neighbors(i) {
		if m.Atoms[n].Element == "H" {
			h++
		}
	}
	return h
}

// HeavyAtomCount returns the number of non-hydrogen atoms.
func (m *Mol) HeavyAtomCount() int {
	n := 0
	for _, a := range m.Atoms {
		if a.Element != "H" {
			n++
		}
	}
	return n
}

// NumComponents returns the number of connected components.
func (m *Mol) NumComponents() int {
	n := len(m.Atoms)
	if n == 0 {
		return 0
	}
	seen := make([]bool, n)
	components := 0
	for start := 0; start < n; start++ {
		if seen[start] {
			continue
		}
		components++
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range m.Neighbors(cur) {
				if !seen[nb] {
					seen[nb] = true
					stack = append(stack, nb)
				}
			}
		}
	}
	return components
}

// RingCount returns the cyclomatic ring count: bonds − atoms + components.
func (m *Mol) RingCount() int {
	return len(m.Bonds) - len(m.Atoms) + m.NumComponents()
}

// RingBonds reports, per bond index, whether the bond lies on a cycle.
// A bond is a ring bond iff its endpoints stay connected after the bond is
// removed.  Molecules are small, so the quadratic scan is fine.
func (m *Mol) RingBonds() []bool {
	out := make([]bool, len(m.Bonds))
	for bi, bond := range m.Bonds {
		out[bi] = m.connectedWithout(bond.From, bond.To, bi)
	}
	return out
}

// AtomRingFlags reports, per atom index, whether the atom is part of a ring.
func (m *Mol) AtomRingFlags() []bool {
	ringBonds := m.RingBonds()
	out := make([]bool, len(m.Atoms))
	for bi, isRing := range ringBonds {
		if isRing {
			out[m.Bonds[bi].From] = true
			out[m.Bonds[bi].To] = true
		}
	}
	return out
}

// connectedWithout reports whether to is reachable from from while skipping
// the bond at index skip.
func (m *Mol) connectedWithout(from, to, skip int) bool {
	seen := make([]bool, len(m.Atoms))
	stack := []int{from}
	seen[from] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			return true
		}
		for _, bi := range m.adj[cur] {
			if bi == skip {
				continue
			}
			nb := m.Bonds[bi].other(cur)
			if !seen[nb] {
				seen[nb] = true
				stack = append(stack, nb)
			}
		}
	}
	return false
}

// Formula returns the Hill-system molecular formula: carbon first, hydrogen
// second, then the remaining elements alphabetically.
func (m *Mol) Formula() string {
	counts := map[string]int{}
	for i, a := range m.Atoms {
		counts[a.Element]++
		counts["H"] += m.ImplicitHCount(i)
	}
	if counts["H"] == 0 {
		delete(counts, "H")
	}

	var sb strings.Builder
	write := func(sym string) {
		n := counts[sym]
		if n == 0 {
			return
		}
		sb.WriteString(sym)
		if n > 1 {
			fmt.Fprintf(&sb, "%d", n)
		}
		delete(counts, sym)
	}

	if counts["C"] > 0 {
		write("C")
		write("H")
	}
	rest := make([]string, 0, len(counts))
	for sym := range counts {
		rest = append(rest, sym)
	}
	sort.Strings(rest)
	for _, sym := range rest {
		write(sym)
	}
	return sb.String()
}

// MolecularWeight returns the average molecular weight in g/mol, including
// implicit hydrogens.
func (m *Mol) MolecularWeight() float64 {
	w := 0.0
	for i, a := range m.Atoms {
		w += a.Mass()
		w += float64(m.ImplicitHCount(i)) * elements["H"].Mass
	}
	return w
}

// AddHydrogens returns a copy of the molecule with every implicit hydrogen
// materialised as an explicit H atom.  Needed before 3D export so that
// downstream formats see complete coordinates.
func (m *Mol) AddHydrogens() *Mol {
	out := NewMol()
	for _, a := range m.Atoms {
		copyAtom := a
		out.AddAtom(copyAtom)
	}
	for _, b := range m.Bonds {
		_ = out.AddBond(b.From, b.To, b.Order, b.Aromatic)
	}
	for i := range m.Atoms {
		for h := 0; h < m.ImplicitHCount(i); h++ {
			hi := out.AddAtom(Atom{Element: "H", AtomicNum: 1, ExplicitH: -1})
			_ = out.AddBond(i, hi, 1, false)
		}
		// The hydrogens are explicit now.
		out.Atoms[i].ExplicitH = 0
	}
	return out
}
