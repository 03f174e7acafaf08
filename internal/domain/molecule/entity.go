// Package molecule provides the core domain model for molecular records in the
// molsearch service.  The Molecule aggregate root carries the normalised
// structure (canonical SMILES plus derived identifiers), computed descriptors,
// and source attribution, and owns the merge rules used when the same
// structure arrives from several sources.
package molecule

import (
	"strings"

	"github.com/turtacn/molsearch/internal/domain/chem"
	"github.com/turtacn/molsearch/pkg/errors"
	"github.com/turtacn/molsearch/pkg/types/common"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Molecule Aggregate Root
// ─────────────────────────────────────────────────────────────────────────────

// Molecule is the aggregate root for a resolved chemical structure.  SMILES is
// always the canonical form; StandardKey is the deduplication handle used when
// merging hits from the local store and remote sources.
type Molecule struct {
	common.BaseEntity

	// Nomenclature
	Name     string   `json:"name,omitempty"`
	CAS      string   `json:"cas,omitempty"`
	Synonyms []string `json:"synonyms,omitempty"`

	// Core structure identifiers
	SMILES             string `json:"smiles"`
	StandardIdentifier string `json:"standard_identifier,omitempty"`
	StandardKey        string `json:"standard_key"`

	// Basic descriptors
	Formula         string  `json:"formula"`
	MolecularWeight float64 `json:"molecular_weight"`

	// Computed properties
	Properties *mtypes.MolecularProperties `json:"properties,omitempty"`

	// Provenance
	Source   string `json:"source,omitempty"`
	SourceID string `json:"source_id,omitempty"`

	// Persisted marks records loaded from the local store.  The search
	// write-back skips them: their rows are already there.
	Persisted bool `json:"-"`

	// Structure2D is the inline SVG depiction, populated lazily.
	Structure2D string `json:"structure_2d,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Factory Functions
// ─────────────────────────────────────────────────────────────────────────────

// NewFromSMILES constructs a Molecule from a SMILES string.  The input is
// parsed and canonicalised; identifiers, formula, weight, and the full
// descriptor set are derived from the parsed structure.  Returns an error
// carrying ErrCodeInvalidStructure if the SMILES cannot be parsed.
func NewFromSMILES(smiles, source string) (*Molecule, error) {
	mol, err := chem.ParseSMILES(smiles)
	if err != nil {
		return nil, err
	}

	canonical := chem.CanonicalSMILES(mol)
	props, err := chem.CalculateProperties(mol)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePropertyCalcFailed, "descriptor calculation failed")
	}

	return &Molecule{
		BaseEntity: common.BaseEntity{
			ID: common.NewID(),
		},
		SMILES:             canonical,
		StandardIdentifier: chem.StandardIdentifier(mol),
		StandardKey:        chem.StandardKey(mol),
		Formula:            mol.Formula(),
		MolecularWeight:    props.MolecularWeight,
		Properties:         props,
		Source:             source,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Merge Semantics
// ─────────────────────────────────────────────────────────────────────────────

// Merge folds another record for the same structure into this one.  Fields
// already set on the receiver are never overwritten; empty fields are filled
// from the other record, and synonyms are unioned case-insensitively.  The
// receiver's source attribution wins.
func (m *Molecule) Merge(other *Molecule) {
	if other == nil {
		return
	}
	if m.Name == "" {
		m.Name = other.Name
	}
	if m.CAS == "" {
		m.CAS = other.CAS
	}
	if m.SMILES == "" {
		m.SMILES = other.SMILES
	}
	if m.StandardIdentifier == "" {
		m.StandardIdentifier = other.StandardIdentifier
	}
	if m.StandardKey == "" {
		m.StandardKey = other.StandardKey
	}
	if m.Formula == "" {
		m.Formula = other.Formula
	}
	if m.MolecularWeight == 0 {
		m.MolecularWeight = other.MolecularWeight
	}
	if m.Properties == nil {
		m.Properties = other.Properties
	}
	if m.Source == "" {
		m.Source = other.Source
	}
	if m.SourceID == "" {
		m.SourceID = other.SourceID
	}
	if m.Structure2D == "" {
		m.Structure2D = other.Structure2D
	}

	seen := make(map[string]bool, len(m.Synonyms)+1)
	for _, s := range m.Synonyms {
		seen[strings.ToLower(s)] = true
	}
	if m.Name != "" {
		seen[strings.ToLower(m.Name)] = true
	}
	for _, s := range append(other.Synonyms, other.Name) {
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		m.Synonyms = append(m.Synonyms, s)
	}
}

// MatchesName reports whether the query matches the record's name or any
// synonym as a case-insensitive substring.
func (m *Molecule) MatchesName(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(m.Name), q) {
		return true
	}
	for _, s := range m.Synonyms {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// DTO Conversion
// ─────────────────────────────────────────────────────────────────────────────

// ToDTO converts the domain entity to a data transfer object suitable for
// cross-layer communication.
func (m *Molecule) ToDTO() mtypes.MoleculeDTO {
	return mtypes.MoleculeDTO{
		BaseEntity:         m.BaseEntity,
		Name:               m.Name,
		CAS:                m.CAS,
		SMILES:             m.SMILES,
		StandardIdentifier: m.StandardIdentifier,
		StandardKey:        m.StandardKey,
		Formula:            m.Formula,
		MolecularWeight:    m.MolecularWeight,
		Synonyms:           m.Synonyms,
		Properties:         m.Properties,
		Source:             m.Source,
		SourceID:           m.SourceID,
		Structure2D:        m.Structure2D,
	}
}

// FromDTO reconstructs a domain entity from a DTO.
func FromDTO(dto mtypes.MoleculeDTO) *Molecule {
	return &Molecule{
		BaseEntity:         dto.BaseEntity,
		Name:               dto.Name,
		CAS:                dto.CAS,
		SMILES:             dto.SMILES,
		StandardIdentifier: dto.StandardIdentifier,
		StandardKey:        dto.StandardKey,
		Formula:            dto.Formula,
		MolecularWeight:    dto.MolecularWeight,
		Synonyms:           dto.Synonyms,
		Properties:         dto.Properties,
		Source:             dto.Source,
		SourceID:           dto.SourceID,
		Structure2D:        dto.Structure2D,
	}
}
