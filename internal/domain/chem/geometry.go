package chem

import (
	"math"
	"math/rand"

	apperrors "github.com/turtacn/molsearch/pkg/errors"
)

// EmbedOptions controls 3D coordinate generation.  The seed and iteration
// cap are explicit so that callers (and tests) get reproducible conformers
// without relying on process-global state.
type EmbedOptions struct {
	// Seed initialises the coordinate RNG.  The same structure and seed
	// always produce the same conformer.
	Seed int64

	// AddHydrogens materialises implicit hydrogens before embedding.
	AddHydrogens bool

	// MinimizeIters caps the optimisation pass that runs after the base
	// relaxation.  0 skips only the extra pass; the base relaxation always
	// runs, so bond lengths stay sensible even without minimisation.
	MinimizeIters int
}

// DefaultEmbedOptions returns the standard embedding parameters.
func DefaultEmbedOptions() EmbedOptions {
	return EmbedOptions{Seed: 42, AddHydrogens: true, MinimizeIters: 500}
}

const (
	idealBondLength = 1.5 // Å, used for all bonded pairs
	repulsionRadius = 2.4 // Å, nonbonded pairs closer than this push apart

	// baseRelaxIters is the unconditional relaxation budget that turns the
	// seeded random cloud into a structure with near-ideal bond lengths.
	baseRelaxIters = 100
)

// Embed3D generates 3D coordinates for the molecule.  It returns the
// (possibly hydrogen-expanded) molecule alongside one coordinate triple per
// atom.  Coordinates start from seeded random positions and relax under a
// simple bonded-spring / nonbonded-repulsion force field: a fixed base
// relaxation always runs, then up to opts.MinimizeIters extra optimisation
// steps.
func Embed3D(m *Mol, opts EmbedOptions) (*Mol, [][3]float64, error) {
	if len(m.Atoms) == 0 {
		return nil, nil, apperrors.New(apperrors.ErrCodeEmbeddingFailed, "cannot embed an empty structure")
	}
	target := m
	if opts.AddHydrogens {
		target = m.AddHydrogens()
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	n := len(target.Atoms)
	coords := make([][3]float64, n)
	span := math.Cbrt(float64(n)) * idealBondLength
	for i := range coords {
		coords[i] = [3]float64{
			rng.Float64() * span,
			rng.Float64() * span,
			rng.Float64() * span,
		}
	}

	for iter := 0; iter < baseRelaxIters+opts.MinimizeIters; iter++ {
		maxShift := relaxStep3D(target, coords)
		if maxShift < 1e-4 {
			break
		}
	}
	return target, coords, nil
}

// relaxStep3D applies one displacement sweep and reports the largest atom
// movement.
func relaxStep3D(m *Mol, coords [][3]float64) float64 {
	n := len(coords)
	disp := make([][3]float64, n)

	// Bonded springs toward the ideal length.
	for _, b := range m.Bonds {
		d, dist := delta3(coords[b.From], coords[b.To])
		if dist < 1e-9 {
			dist = 1e-9
		}
		f := 0.5 * (dist - idealBondLength) / dist
		for k := 0; k < 3; k++ {
			disp[b.From][k] -= d[k] * f
			disp[b.To][k] += d[k] * f
		}
	}

	// Nonbonded repulsion inside the cutoff.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if m.BondBetween(i, j) >= 0 {
				continue
			}
			d, dist := delta3(coords[i], coords[j])
			if dist >= repulsionRadius {
				continue
			}
			if dist < 1e-9 {
				dist = 1e-9
			}
			f := 0.25 * (repulsionRadius - dist) / dist
			for k := 0; k < 3; k++ {
				disp[i][k] += d[k] * f
				disp[j][k] -= d[k] * f
			}
		}
	}

	maxShift := 0.0
	for i := 0; i < n; i++ {
		shift := 0.0
		for k := 0; k < 3; k++ {
			coords[i][k] += disp[i][k]
			shift += disp[i][k] * disp[i][k]
		}
		if s := math.Sqrt(shift); s > maxShift {
			maxShift = s
		}
	}
	return maxShift
}

func delta3(a, b [3]float64) ([3]float64, float64) {
	d := [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
	return d, math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

// Layout2D produces deterministic 2D depiction coordinates in bond-length
// units, suitable for SVG and raster rendering.  The layout seeds a fixed
// RNG, so the same structure always draws identically.
func Layout2D(m *Mol) [][2]float64 {
	n := len(m.Atoms)
	coords := make([][2]float64, n)
	if n == 0 {
		return coords
	}
	if n == 1 {
		return coords
	}

	rng := rand.New(rand.NewSource(7))
	for i := range coords {
		coords[i] = [2]float64{rng.Float64() * float64(n), rng.Float64() * float64(n)}
	}

	for iter := 0; iter < 300; iter++ {
		disp := make([][2]float64, n)
		for _, b := range m.Bonds {
			dx := coords[b.From][0] - coords[b.To][0]
			dy := coords[b.From][1] - coords[b.To][1]
			dist := math.Hypot(dx, dy)
			if dist < 1e-9 {
				dist = 1e-9
			}
			f := 0.5 * (dist - 1.0) / dist
			disp[b.From][0] -= dx * f
			disp[b.From][1] -= dy * f
			disp[b.To][0] += dx * f
			disp[b.To][1] += dy * f
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if m.BondBetween(i, j) >= 0 {
					continue
				}
				dx := coords[i][0] - coords[j][0]
				dy := coords[i][1] - coords[j][1]
				dist := math.Hypot(dx, dy)
				if dist >= 1.8 {
					continue
				}
				if dist < 1e-9 {
					dist = 1e-9
				}
				f := 0.25 * (1.8 - dist) / dist
				disp[i][0] += dx * f
				disp[i][1] += dy * f
				disp[j][0] -= dx * f
				disp[j][1] -= dy * f
			}
		}
		for i := 0; i < n; i++ {
			coords[i][0] += disp[i][0]
			coords[i][1] += disp[i][1]
		}
	}
	return coords
}
