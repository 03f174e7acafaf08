package molecule

import (
	"time"

	"github.com/turtacn/molsearch/pkg/types/common"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// SearchRecord is one completed search, kept for the history listing.
// Recording is fire-and-forget: a failed write never affects the search that
// produced it.
type SearchRecord struct {
	ID          common.ID         `json:"id"`
	Query       string            `json:"query"`
	SearchType  mtypes.SearchType `json:"search_type"`
	ResultCount int               `json:"result_count"`
	DurationMS  int64             `json:"duration_ms"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewSearchRecord builds a record for a finished search.
func NewSearchRecord(query string, searchType mtypes.SearchType, resultCount int, duration time.Duration) *SearchRecord {
	return &SearchRecord{
		ID:          common.NewID(),
		Query:       query,
		SearchType:  searchType,
		ResultCount: resultCount,
		DurationMS:  duration.Milliseconds(),
		CreatedAt:   time.Now().UTC(),
	}
}

// ToDTO converts the record for cross-layer communication.
func (r *SearchRecord) ToDTO() mtypes.HistoryEntryDTO {
	return mtypes.HistoryEntryDTO{
		ID:          r.ID,
		Query:       r.Query,
		SearchType:  string(r.SearchType),
		ResultCount: r.ResultCount,
		DurationMS:  r.DurationMS,
		CreatedAt:   common.Timestamp(r.CreatedAt),
	}
}
