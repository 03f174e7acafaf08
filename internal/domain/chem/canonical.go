package chem

import (
	"fmt"
	"sort"
	"strings"
)

// CanonicalSMILES returns a canonical SMILES rendering of the molecule.
// Canonical ranks come from iterative neighbour-rank refinement seeded with
// per-atom invariants; the writer then walks atoms in rank order so that the
// same structure always serialises identically regardless of input atom
// order.
func CanonicalSMILES(m *Mol) string {
	if len(m.Atoms) == 0 {
		return ""
	}
	ranks := canonicalRanks(m)
	return writeSMILES(m, ranks)
}

// ─────────────────────────────────────────────────────────────────────────────
// Canonical ranking
// ─────────────────────────────────────────────────────────────────────────────

// atomInvariant is the seed key for rank refinement.  Degree sorts first so
// that terminal atoms rank lowest and become chain starts; atomic number
// breaks ties between elements.
func atomInvariant(m *Mol, i int) [6]int {
	a := m.Atoms[i]
	arom := 0
	if a.Aromatic {
		arom = 1
	}
	return [6]int{m.Degree(i), a.AtomicNum, arom, a.Charge, m.ImplicitHCount(i), a.Isotope}
}

// canonicalRanks assigns each atom a unique rank in [0, n).
func canonicalRanks(m *Mol) []int {
	n := len(m.Atoms)
	ranks := make([]int, n)

	// Seed ranks from the invariant tuples.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return lessInvariant(atomInvariant(m, order[x]), atomInvariant(m, order[y]))
	})
	rank := 0
	for idx, ai := range order {
		if idx > 0 && atomInvariant(m, ai) != atomInvariant(m, order[idx-1]) {
			rank++
		}
		ranks[ai] = rank
	}

	ranks = refine(m, ranks)

	// Break remaining ties deterministically: pick the lowest-index atom in
	// the smallest tied class, give it a fresh rank, and refine again.
	for countClasses(ranks) < n {
		tied := pickTied(ranks)
		bumped := make([]int, n)
		for i, r := range ranks {
			bumped[i] = r * 2
		}
		bumped[tied]--
		ranks = refine(m, compact(bumped))
	}
	return ranks
}

// refine repeats neighbour-rank sweeps until the partition stops splitting.
func refine(m *Mol, ranks []int) []int {
	n := len(ranks)
	for {
		type key struct {
			self      int
			neighbors string
		}
		keys := make([]key, n)
		for i := 0; i < n; i++ {
			nb := make([]int, 0, m.Degree(i))
			for _, j := range m.Neighbors(i) {
				bi := m.BondBetween(i, j)
				// Encode bond order with the neighbour rank so that C=O and
				// C-O environments split.
				nb = append(nb, ranks[j]*8+m.Bonds[bi].Order)
			}
			sort.Ints(nb)
			keys[i] = key{self: ranks[i], neighbors: fmt.Sprint(nb)}
		}

		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(x, y int) bool {
			if keys[order[x]].self != keys[order[y]].self {
				return keys[order[x]].self < keys[order[y]].self
			}
			return keys[order[x]].neighbors < keys[order[y]].neighbors
		})

		next := make([]int, n)
		rank := 0
		for idx, ai := range order {
			if idx > 0 && keys[ai] != keys[order[idx-1]] {
				rank++
			}
			next[ai] = rank
		}

		if countClasses(next) == countClasses(ranks) {
			return next
		}
		ranks = next
	}
}

func lessInvariant(a, b [6]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func countClasses(ranks []int) int {
	seen := map[int]bool{}
	for _, r := range ranks {
		seen[r] = true
	}
	return len(seen)
}

// pickTied returns the lowest-index atom of the smallest duplicated rank.
func pickTied(ranks []int) int {
	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}
	bestRank := -1
	for r, c := range counts {
		if c > 1 && (bestRank < 0 || r < bestRank) {
			bestRank = r
		}
	}
	for i, r := range ranks {
		if r == bestRank {
			return i
		}
	}
	return 0
}

// compact renumbers arbitrary rank values to a dense [0, classes) range.
func compact(ranks []int) []int {
	vals := make([]int, len(ranks))
	copy(vals, ranks)
	sort.Ints(vals)
	lookup := map[int]int{}
	next := 0
	for _, v := range vals {
		if _, ok := lookup[v]; !ok {
			lookup[v] = next
			next++
		}
	}
	out := make([]int, len(ranks))
	for i, r := range ranks {
		out[i] = lookup[r]
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// SMILES writer
// ─────────────────────────────────────────────────────────────────────────────

// organicSubset lists elements that may be written without brackets.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

type smilesWriter struct {
	mol   *Mol
	ranks []int

	sb          strings.Builder
	visited     []bool
	ringDigits  map[int]map[int]int // atom → partner atom → digit
	nextDigit   int
	ringBondSet map[[2]int]bool
}

// writeSMILES serialises the molecule walking from the lowest-ranked atom of
// each fragment, visiting neighbours in canonical rank order.
func writeSMILES(m *Mol, ranks []int) string {
	w := &smilesWriter{
		mol:         m,
		ranks:       ranks,
		visited:     make([]bool, len(m.Atoms)),
		ringDigits:  map[int]map[int]int{},
		nextDigit:   1,
		ringBondSet: map[[2]int]bool{},
	}
	w.assignRingBonds()

	first := true
	for {
		start := -1
		for i := range m.Atoms {
			if !w.visited[i] && (start < 0 || ranks[i] < ranks[start]) {
				start = i
			}
		}
		if start < 0 {
			break
		}
		if !first {
			w.sb.WriteByte('.')
		}
		first = false
		w.walk(start, -1)
	}
	return w.sb.String()
}

// assignRingBonds picks, per ring bond, which traversal will be cut and
// replaced with a closure digit.  A spanning DFS in rank order marks tree
// bonds; every remaining bond becomes a ring closure.
func (w *smilesWriter) assignRingBonds() {
	m := w.mol
	seen := make([]bool, len(m.Atoms))
	treeBond := make([]bool, len(m.Bonds))

	var dfs func(i int)
	dfs = func(i int) {
		seen[i] = true
		for _, j := range w.sortedNeighbors(i) {
			if !seen[j] {
				treeBond[m.BondBetween(i, j)] = true
				dfs(j)
			}
		}
	}
	for {
		start := -1
		for i := range m.Atoms {
			if !seen[i] && (start < 0 || w.ranks[i] < w.ranks[start]) {
				start = i
			}
		}
		if start < 0 {
			break
		}
		dfs(start)
	}

	for bi, b := range m.Bonds {
		if treeBond[bi] {
			continue
		}
		digit := w.nextDigit
		w.nextDigit++
		if w.ringDigits[b.From] == nil {
			w.ringDigits[b.From] = map[int]int{}
		}
		if w.ringDigits[b.To] == nil {
			w.ringDigits[b.To] = map[int]int{}
		}
		w.ringDigits[b.From][b.To] = digit
		w.ringDigits[b.To][b.From] = digit
		w.ringBondSet[bondKey(b.From, b.To)] = true
	}
}

func bondKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// sortedNeighbors returns atom i's neighbours in canonical rank order.
func (w *smilesWriter) sortedNeighbors(i int) []int {
	nb := w.mol.Neighbors(i)
	sort.Slice(nb, func(x, y int) bool { return w.ranks[nb[x]] < w.ranks[nb[y]] })
	return nb
}

func (w *smilesWriter) walk(i, from int) {
	w.visited[i] = true
	w.writeAtom(i)

	// Ring closure digits directly after the atom symbol.
	partners := make([]int, 0, len(w.ringDigits[i]))
	for p := range w.ringDigits[i] {
		partners = append(partners, p)
	}
	sort.Slice(partners, func(x, y int) bool {
		return w.ringDigits[i][partners[x]] < w.ringDigits[i][partners[y]]
	})
	for _, p := range partners {
		digit := w.ringDigits[i][p]
		if !w.visited[p] {
			// Opening side carries the bond symbol.
			w.writeBondSymbol(i, p)
		}
		if digit > 9 {
			fmt.Fprintf(&w.sb, "%%%02d", digit)
		} else {
			fmt.Fprintf(&w.sb, "%d", digit)
		}
	}

	// Tree children in rank order; all but the last go in branches.
	children := make([]int, 0)
	for _, j := range w.sortedNeighbors(i) {
		if j == from || w.visited[j] || w.ringBondSet[bondKey(i, j)] {
			continue
		}
		children = append(children, j)
	}
	for idx, j := range children {
		if w.visited[j] {
			continue
		}
		last := idx == len(children)-1
		if !last {
			w.sb.WriteByte('(')
		}
		w.writeBondSymbol(i, j)
		w.walk(j, i)
		if !last {
			w.sb.WriteByte(')')
		}
	}
}

func (w *smilesWriter) writeBondSymbol(a, b int) {
	bond := w.mol.Bonds[w.mol.BondBetween(a, b)]
	switch {
	case bond.Aromatic:
		// Default bond between aromatic atoms.
	case bond.Order == 2:
		w.sb.WriteByte('=')
	case bond.Order == 3:
		w.sb.WriteByte('#')
	case bond.Order == 1 && w.mol.Atoms[a].Aromatic && w.mol.Atoms[b].Aromatic:
		// Explicit single bond between two aromatic atoms (biphenyl link).
		w.sb.WriteByte('-')
	}
}

func (w *smilesWriter) writeAtom(i int) {
	a := w.mol.Atoms[i]
	sym := a.Element
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}

	if !w.needsBrackets(i) {
		w.sb.WriteString(sym)
		return
	}

	w.sb.WriteByte('[')
	if a.Isotope > 0 {
		fmt.Fprintf(&w.sb, "%d", a.Isotope)
	}
	w.sb.WriteString(sym)
	h := w.mol.ImplicitHCount(i)
	if h == 1 {
		w.sb.WriteByte('H')
	} else if h > 1 {
		fmt.Fprintf(&w.sb, "H%d", h)
	}
	switch {
	case a.Charge == 1:
		w.sb.WriteByte('+')
	case a.Charge == -1:
		w.sb.WriteByte('-')
	case a.Charge > 1:
		fmt.Fprintf(&w.sb, "+%d", a.Charge)
	case a.Charge < -1:
		fmt.Fprintf(&w.sb, "-%d", -a.Charge)
	}
	w.sb.WriteByte(']')
}

// needsBrackets reports whether the atom cannot be written bare: charged or
// isotopic atoms, elements outside the organic subset, and atoms whose
// hydrogen count differs from what default valence would imply.
func (w *smilesWriter) needsBrackets(i int) bool {
	a := w.mol.Atoms[i]
	if a.Charge != 0 || a.Isotope != 0 {
		return true
	}
	if !organicSubset[a.Element] {
		return true
	}
	if a.ExplicitH >= 0 && a.ExplicitH != w.impliedHCount(i) {
		return true
	}
	return false
}

// impliedHCount computes the hydrogen count the default-valence rule would
// assign, ignoring any bracket-specified count.
func (w *smilesWriter) impliedHCount(i int) int {
	a := w.mol.Atoms[i]
	v := a.defaultValence()
	used := w.mol.bondOrderSum(i)
	if a.Aromatic {
		used++
	}
	h := v - used
	if h < 0 {
		return 0
	}
	return h
}
