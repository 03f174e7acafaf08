// Package molecule defines the persistence contracts for molecular records.
package molecule

import (
	"context"

	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// Repository defines the persistence contract for Molecule aggregates.
type Repository interface {
	// Search retrieves molecules matching the query under the given search
	// type: case-insensitive substring match for names, exact match for CAS,
	// SMILES, and key lookups.  An unrecognised search type yields zero
	// results, not an error.
	Search(ctx context.Context, query string, searchType mtypes.SearchType, limit int) ([]*Molecule, error)

	// FindByKey retrieves a molecule by its standard key.
	// Returns errors.ErrCodeMoleculeNotFound if no matching record exists.
	FindByKey(ctx context.Context, key string) (*Molecule, error)

	// Upsert inserts the molecule or, when a record with the same standard
	// key already exists, fills its empty fields without overwriting
	// populated ones.
	Upsert(ctx context.Context, mol *Molecule) error

	// Count returns the total number of stored molecules.
	Count(ctx context.Context) (int64, error)
}

// HistoryRepository defines the persistence contract for search records.
type HistoryRepository interface {
	// Save persists one search record.
	Save(ctx context.Context, rec *SearchRecord) error

	// List returns the most recent records, newest first, capped at limit.
	List(ctx context.Context, limit int) ([]*SearchRecord, error)
}
