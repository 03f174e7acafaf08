package repositories

import (
	"context"

	"github.com/turtacn/molsearch/internal/domain/molecule"
	appErrors "github.com/turtacn/molsearch/pkg/errors"
)

// HistoryRepository is the PostgreSQL implementation of the molecule
// domain's HistoryRepository interface.
type HistoryRepository struct {
	db     DB
	logger Logger
}

// NewHistoryRepository constructs a ready-to-use HistoryRepository.
func NewHistoryRepository(db DB, logger Logger) *HistoryRepository {
	if logger == nil {
		logger = nopLogger{}
	}
	return &HistoryRepository{db: db, logger: logger}
}

// Save persists one search record.
func (r *HistoryRepository) Save(ctx context.Context, rec *molecule.SearchRecord) error {
	r.logger.Debug("HistoryRepository.Save", "query", rec.Query)

	_, err := r.db.Exec(ctx, `
		INSERT INTO search_history (id, query, search_type, result_count, duration_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.Query, rec.SearchType, rec.ResultCount, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("HistoryRepository.Save", "error", err)
		return appErrors.Wrap(err, appErrors.ErrCodeHistoryWriteFailed, "saving search record")
	}
	return nil
}

// List returns the most recent records, newest first.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]*molecule.SearchRecord, error) {
	r.logger.Debug("HistoryRepository.List", "limit", limit)

	rows, err := r.db.Query(ctx, `
		SELECT id, query, search_type, result_count, duration_ms, created_at
		FROM search_history
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		r.logger.Error("HistoryRepository.List", "error", err)
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "listing search history")
	}
	defer rows.Close()

	var out []*molecule.SearchRecord
	for rows.Next() {
		var rec molecule.SearchRecord
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.SearchType, &rec.ResultCount, &rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "scanning search record")
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "reading search records")
	}
	return out, nil
}
