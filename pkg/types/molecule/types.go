// Package molecule defines all molecule-domain Data Transfer Objects, enumerations,
// and request/response structures used across every layer of the molsearch
// service.  No domain logic lives here — only plain data types that are safe to
// import from any layer without creating circular dependencies.
package molecule

import (
	"fmt"
	"strings"

	"github.com/turtacn/molsearch/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// SearchType — how a search query should be interpreted
// ─────────────────────────────────────────────────────────────────────────────

// SearchType selects the lookup strategy applied to a search query.
type SearchType string

const (
	// SearchByName matches molecule names with a case-insensitive substring scan.
	SearchByName SearchType = "name"

	// SearchByCAS matches the CAS registry number exactly.
	SearchByCAS SearchType = "cas"

	// SearchBySMILES matches the canonical SMILES string exactly.
	SearchBySMILES SearchType = "smiles"

	// SearchByInChI matches the standard identifier string exactly.
	SearchByInChI SearchType = "inchi"

	// SearchByInChIKey matches the 27-character structure key exactly.
	SearchByInChIKey SearchType = "inchikey"
)

// IsValid reports whether the SearchType is one of the recognised values.
func (s SearchType) IsValid() bool {
	switch s {
	case SearchByName, SearchByCAS, SearchBySMILES, SearchByInChI, SearchByInChIKey:
		return true
	}
	return false
}

func (s SearchType) String() string {
	return string(s)
}

// ParseSearchType converts a string to a SearchType, case-insensitively.
func ParseSearchType(s string) (SearchType, error) {
	st := SearchType(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("unrecognized search type %q", s)
	}
	return st, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ExportFormat — supported structure export formats
// ─────────────────────────────────────────────────────────────────────────────

// ExportFormat identifies a structure export target format.
type ExportFormat string

const (
	FormatSDF   ExportFormat = "sdf"
	FormatMOL2  ExportFormat = "mol2"
	FormatPDB   ExportFormat = "pdb"
	FormatPDBQT ExportFormat = "pdbqt"
	FormatPNG   ExportFormat = "png"
	FormatSVG   ExportFormat = "svg"
)

// IsValid reports whether the ExportFormat is one of the supported values.
func (f ExportFormat) IsValid() bool {
	switch f {
	case FormatSDF, FormatMOL2, FormatPDB, FormatPDBQT, FormatPNG, FormatSVG:
		return true
	}
	return false
}

func (f ExportFormat) String() string {
	return string(f)
}

// ParseExportFormat converts a string to an ExportFormat, case-insensitively.
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("unsupported export format %q", s)
	}
	return f, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// MolecularProperties — physicochemical descriptor set
// ─────────────────────────────────────────────────────────────────────────────

// MolecularProperties holds computed physicochemical descriptors for a molecule.
// The set is computed atomically: either every field is populated from the same
// parsed structure, or none are.
type MolecularProperties struct {
	// MolecularWeight is the average molecular weight in g/mol.
	MolecularWeight float64 `json:"molecular_weight"`

	// Formula is the Hill-system molecular formula (e.g., "C2H6O").
	Formula string `json:"formula"`

	// LogP is the estimated octanol-water partition coefficient
	// (atom-contribution method).
	LogP float64 `json:"log_p"`

	// TPSA is the topological polar surface area in Å².
	TPSA float64 `json:"tpsa"`

	// HBondDonors is the number of hydrogen-bond donor groups (NH, OH).
	HBondDonors int `json:"h_bond_donors"`

	// HBondAcceptors is the number of hydrogen-bond acceptor groups (N, O).
	HBondAcceptors int `json:"h_bond_acceptors"`

	// RotatableBonds is the count of non-terminal, non-ring single bonds.
	RotatableBonds int `json:"rotatable_bonds"`

	// RingCount is the number of rings (SSSR count).
	RingCount int `json:"ring_count"`

	// HeavyAtomCount is the number of non-hydrogen atoms.
	HeavyAtomCount int `json:"heavy_atom_count"`

	// LipinskiCompliant reports whether the molecule satisfies all four
	// rule-of-five bounds: LogP ≤ 5, donors ≤ 5, acceptors ≤ 10, and
	// weight ≤ 500 g/mol (every bound inclusive).
	LipinskiCompliant bool `json:"lipinski_compliant"`
}

// ─────────────────────────────────────────────────────────────────────────────
// MoleculeDTO — cross-layer data transfer object for a molecule
// ─────────────────────────────────────────────────────────────────────────────

// MoleculeDTO is the canonical molecule representation passed between the
// application, interface, and client layers.  It embeds common.BaseEntity so
// that it carries audit metadata without duplicating field definitions.
type MoleculeDTO struct {
	common.BaseEntity

	// Name is the preferred name for the molecule.
	Name string `json:"name,omitempty"`

	// CAS is the CAS registry number, when known.
	CAS string `json:"cas,omitempty"`

	// SMILES is the canonical SMILES string.
	SMILES string `json:"smiles"`

	// StandardIdentifier is the structure-derived identifier string
	// (formula layer plus connectivity digest).
	StandardIdentifier string `json:"inchi,omitempty"`

	// StandardKey is the 27-character hashed structure key used for
	// cross-source de-duplication.
	StandardKey string `json:"inchi_key"`

	// Formula is the Hill-system molecular formula.
	Formula string `json:"formula,omitempty"`

	// MolecularWeight is the average molecular weight in g/mol.
	MolecularWeight float64 `json:"molecular_weight,omitempty"`

	// Synonyms lists alternative names and registry numbers.
	Synonyms []string `json:"synonyms,omitempty"`

	// Properties contains the computed physicochemical descriptors.
	Properties *MolecularProperties `json:"properties,omitempty"`

	// Source names the origin of the record: "local", "pubchem", or "chembl".
	Source string `json:"source"`

	// SourceID is the identifier of the record within its origin database
	// (PubChem CID, ChEMBL ID, or the local row ID).
	SourceID string `json:"source_id,omitempty"`

	// Structure2D is an inline 2D depiction: SVG markup, or a
	// data:image/png;base64 URI for raster output.
	Structure2D string `json:"structure_2d,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Search request / response
// ─────────────────────────────────────────────────────────────────────────────

// SearchRequest is the input DTO for multi-source molecule search.
type SearchRequest struct {
	// Query is the search term: a name fragment, CAS number, SMILES string,
	// or structure identifier depending on SearchType.  1–1000 characters.
	Query string `json:"query" binding:"required,min=1,max=1000"`

	// SearchType selects the lookup strategy.  Defaults to "name".
	SearchType string `json:"search_type" binding:"omitempty,oneof=name cas smiles inchi inchikey"`

	// Limit caps the number of merged results.  1–100, default 20.
	Limit int `json:"limit" binding:"omitempty,min=1,max=100"`
}

// SearchResponse is the output DTO for multi-source molecule search.
type SearchResponse struct {
	Query      string        `json:"query"`
	SearchType string        `json:"search_type"`

	// Total is the merged result count before truncation to Limit.
	Total int `json:"total"`

	Results []MoleculeDTO `json:"results"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Export request / response
// ─────────────────────────────────────────────────────────────────────────────

// ExportRequest is the input DTO for structure format conversion.
//
// AddHydrogens and Minimize are tri-state: nil means "use the default" (true
// for both), which only applies to 3D output formats.
type ExportRequest struct {
	SMILES string `json:"smiles" binding:"required,min=1,max=1000"`
	Format string `json:"format" binding:"required,oneof=sdf mol2 pdb pdbqt png svg"`

	AddHydrogens *bool `json:"add_hydrogens,omitempty"`
	Minimize     *bool `json:"minimize,omitempty"`
}

// ExportResponse is the output DTO for structure format conversion.
// Content is raw text for text formats and base64 for binary formats (png).
type ExportResponse struct {
	Format      string `json:"format"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`

	// ApproximatedAs names the substitute format actually produced when the
	// requested format is only approximated (mol2 → sdf, pdbqt → pdb).
	// Empty when the requested format was produced natively.
	ApproximatedAs string `json:"approximated_as,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validate request / response
// ─────────────────────────────────────────────────────────────────────────────

// ValidateRequest is the input DTO for SMILES validation.
type ValidateRequest struct {
	SMILES string `json:"smiles" binding:"required,min=1,max=1000"`
}

// ValidateResponse is the output DTO for SMILES validation.  The operation
// never raises: invalid input yields Valid=false plus a reason, with every
// structure-derived field left empty.
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`

	CanonicalSMILES    string               `json:"canonical_smiles,omitempty"`
	StandardIdentifier string               `json:"inchi,omitempty"`
	StandardKey        string               `json:"inchi_key,omitempty"`
	Formula            string               `json:"formula,omitempty"`
	MolecularWeight    float64              `json:"molecular_weight,omitempty"`
	Properties         *MolecularProperties `json:"properties,omitempty"`
	Structure2D        string               `json:"structure_2d,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// History
// ─────────────────────────────────────────────────────────────────────────────

// HistoryEntryDTO is one recorded search query.
type HistoryEntryDTO struct {
	ID           common.ID        `json:"id"`
	Query        string           `json:"query"`
	SearchType   string           `json:"search_type"`
	ResultCount  int              `json:"result_count"`
	DurationMS   int64            `json:"duration_ms"`
	CreatedAt    common.Timestamp `json:"created_at"`
}

// HistoryResponse is the output DTO for the history listing.
type HistoryResponse struct {
	Entries []HistoryEntryDTO `json:"entries"`
	Total   int               `json:"total"`
}
