// Package sources defines the contract for remote compound databases queried
// during search aggregation.  Implementations are best-effort: the aggregator
// gives each source a bounded context and treats any failure as an empty
// result, never as a search failure.
package sources

import (
	"context"

	"github.com/turtacn/molsearch/internal/domain/molecule"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// Source is one remote compound database.
type Source interface {
	// Name identifies the source in logs, metrics, and result attribution.
	Name() string

	// Search looks the query up remotely and returns normalised records.
	// Implementations make a single attempt per call and respect ctx
	// cancellation; limit caps the number of returned records.
	Search(ctx context.Context, query string, searchType mtypes.SearchType, limit int) ([]*molecule.Molecule, error)
}
