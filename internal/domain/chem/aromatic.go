package chem

// perceiveAromaticity normalises Kekulé-form rings to the aromatic
// representation the parser builds for lowercase input, so that C1=CC=CC=C1
// and c1ccccc1 describe the same graph.  Five- and six-membered rings of
// C/N/O/S that pass a Hückel-style π count get aromatic atoms and order-1
// aromatic bonds.
func perceiveAromaticity(m *Mol) {
	if len(m.Bonds) < 5 || m.RingCount() == 0 {
		return
	}
	rings := m.smallRings()
	if len(rings) == 0 {
		return
	}
	inRing := m.AtomRingFlags()

	// An aromatised ring can qualify a fused neighbour whose π system leans
	// on shared atoms, so sweep until no ring changes.
	done := make([]bool, len(rings))
	for changed := true; changed; {
		changed = false
		for ri, ring := range rings {
			if done[ri] || !m.ringIsAromatic(ring, inRing) {
				continue
			}
			m.aromatizeRing(ring, inRing)
			done[ri] = true
			changed = true
		}
	}
}

// ringIsAromatic tests one ring against the 4n+2 rule with n=1: every member
// must supply π electrons, and six must be achievable.  An atom contributes
// one electron through an endocyclic double bond, one or two through an
// existing aromatic assignment, or two through a neutral N/O/S lone pair.
func (m *Mol) ringIsAromatic(ring []int, inRing []bool) bool {
	low, high := 0, 0
	for _, i := range ring {
		a := m.Atoms[i]
		switch a.Element {
		case "C", "N", "O", "S":
		default:
			return false
		}
		switch {
		case a.Aromatic:
			low++
			high += 2
		case m.hasEndocyclicDouble(i, inRing):
			low++
			high++
		case a.Charge == 0 && a.Element != "C":
			low += 2
			high += 2
		default:
			return false
		}
	}
	return low <= 6 && high >= 6
}

// hasEndocyclicDouble reports whether atom i carries a double bond to another
// ring atom.  Exocyclic doubles (carbonyls on a ring carbon) do not count.
func (m *Mol) hasEndocyclicDouble(i int, inRing []bool) bool {
	for _, bi := range m.adj[i] {
		b := m.Bonds[bi]
		if b.Order == 2 && !b.Aromatic && inRing[b.other(i)] {
			return true
		}
	}
	return false
}

// aromatizeRing rewrites the ring in the parser's aromatic form.  Lone-pair
// donors pin their hydrogen count first: the aromatic valence adjustment
// would otherwise drop the pyrrole N–H.
func (m *Mol) aromatizeRing(ring []int, inRing []bool) {
	for _, i := range ring {
		a := m.Atoms[i]
		if !a.Aromatic && a.ExplicitH < 0 && !m.hasEndocyclicDouble(i, inRing) {
			m.Atoms[i].ExplicitH = m.ImplicitHCount(i)
		}
	}
	for _, i := range ring {
		m.Atoms[i].Aromatic = true
	}
	for k, i := range ring {
		bi := m.BondBetween(i, ring[(k+1)%len(ring)])
		m.Bonds[bi].Order = 1
		m.Bonds[bi].Aromatic = true
	}
}

// smallRings enumerates every 5- and 6-membered simple cycle once, as an
// ordered atom list.  Each cycle is grown from its lowest atom index, and the
// two traversal directions collapse by requiring the second atom to sort
// below the last.
func (m *Mol) smallRings() [][]int {
	const maxRing = 6
	n := len(m.Atoms)
	var out [][]int
	onPath := make([]bool, n)
	path := make([]int, 0, maxRing)

	var dfs func(start, cur int)
	dfs = func(start, cur int) {
		for _, bi := range m.adj[cur] {
			nb := m.Bonds[bi].other(cur)
			if nb == start && len(path) >= maxRing-1 {
				if path[1] < path[len(path)-1] {
					ring := make([]int, len(path))
					copy(ring, path)
					out = append(out, ring)
				}
				continue
			}
			if nb <= start || onPath[nb] || len(path) == maxRing {
				continue
			}
			onPath[nb] = true
			path = append(path, nb)
			dfs(start, nb)
			path = path[:len(path)-1]
			onPath[nb] = false
		}
	}

	for s := 0; s < n; s++ {
		path = append(path[:0], s)
		onPath[s] = true
		dfs(s, s)
		onPath[s] = false
	}
	return out
}
