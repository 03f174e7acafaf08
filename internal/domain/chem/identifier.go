package chem

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// StandardIdentifier derives the layered textual identifier for a molecule:
// a version tag, the Hill formula, and a connectivity layer digested from the
// canonical SMILES.  Two inputs describing the same structure always produce
// the same identifier.
func StandardIdentifier(m *Mol) string {
	canonical := CanonicalSMILES(m)
	sum := sha256.Sum256([]byte(canonical))
	connectivity := strings.ToLower(hex.EncodeToString(sum[:8]))
	return fmt.Sprintf("InChI=1S/%s/c%s", m.Formula(), connectivity)
}

// StandardKey derives the fixed-width hashed key for a molecule, formatted as
// a 14-character block, a 10-character block, and a single check character,
// joined by hyphens.  The key is the primary deduplication handle across
// sources.
func StandardKey(m *Mol) string {
	return KeyFromCanonical(CanonicalSMILES(m))
}

// KeyFromCanonical derives the standard key directly from an already
// canonicalised SMILES string.
func KeyFromCanonical(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	hexed := strings.ToUpper(hex.EncodeToString(sum[:]))
	return fmt.Sprintf("%s-%s-%s", hexed[:14], hexed[14:24], hexed[24:25])
}
