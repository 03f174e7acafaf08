// Package search implements multi-source molecule resolution: the local store
// is consulted first, remote compound databases fill the remainder, and merged
// results are deduplicated by standard key.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/turtacn/molsearch/internal/domain/chem"
	"github.com/turtacn/molsearch/internal/domain/molecule"
	"github.com/turtacn/molsearch/internal/format"
	redisdb "github.com/turtacn/molsearch/internal/infrastructure/database/redis"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molsearch/internal/sources"
	"github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service defines the application operations for molecule search.
type Service interface {
	// Search resolves the query across the local store and the configured
	// external sources, merging duplicates by standard key.
	Search(ctx context.Context, req *mtypes.SearchRequest) (*mtypes.SearchResponse, error)

	// History returns recently recorded searches, newest first.
	History(ctx context.Context, limit int) (*mtypes.HistoryResponse, error)
}

// Config holds aggregation tunables.
type Config struct {
	DefaultLimit  int
	MaxLimit      int
	CacheTTL      time.Duration
	SourceTimeout time.Duration
	HistoryLimit  int
	HistoryMax    int
}

func (c *Config) applyDefaults() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 20
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 100
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 15 * time.Minute
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = 10 * time.Second
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	if c.HistoryMax <= 0 {
		c.HistoryMax = 200
	}
}

type service struct {
	cfg         Config
	repo        molecule.Repository
	historyRepo molecule.HistoryRepository
	sources     []sources.Source
	recorder    *Recorder
	cache       redisdb.Cache
	metrics     *prometheus.AppMetrics
	logger      logging.Logger

	writeBackWG sync.WaitGroup
}

// NewService builds the search service. Cache, recorder, and metrics are
// optional; a nil value disables the corresponding concern.
func NewService(
	cfg Config,
	repo molecule.Repository,
	historyRepo molecule.HistoryRepository,
	srcs []sources.Source,
	recorder *Recorder,
	cache redisdb.Cache,
	metrics *prometheus.AppMetrics,
	log logging.Logger,
) Service {
	cfg.applyDefaults()
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &service{
		cfg:         cfg,
		repo:        repo,
		historyRepo: historyRepo,
		sources:     srcs,
		recorder:    recorder,
		cache:       cache,
		metrics:     metrics,
		logger:      log.Named("search"),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Search
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) Search(ctx context.Context, req *mtypes.SearchRequest) (*mtypes.SearchResponse, error) {
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errors.New(errors.ErrCodeValidation, "query is required")
	}
	searchType := mtypes.SearchType(strings.ToLower(strings.TrimSpace(req.SearchType)))
	if searchType == "" {
		searchType = mtypes.SearchByName
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	resp, err := s.searchCached(ctx, query, searchType, limit)
	duration := time.Since(start)

	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSearch(string(searchType), 0, duration, err)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordSearch(string(searchType), resp.Total, duration, nil)
	}
	if s.recorder != nil {
		s.recorder.Record(query, searchType, resp.Total, duration)
	}
	return resp, nil
}

func (s *service) searchCached(ctx context.Context, query string, searchType mtypes.SearchType, limit int) (*mtypes.SearchResponse, error) {
	if s.cache == nil {
		return s.aggregate(ctx, query, searchType, limit)
	}

	key := redisdb.SearchKey(query, searchType, limit)

	var resp mtypes.SearchResponse
	if err := s.cache.Get(ctx, key, &resp); err == nil {
		if s.metrics != nil {
			s.metrics.RecordCacheAccess("search", true)
		}
		return &resp, nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheAccess("search", false)
	}

	err := s.cache.GetOrSet(ctx, key, &resp, s.cfg.CacheTTL, func(ctx context.Context) (interface{}, error) {
		return s.aggregate(ctx, query, searchType, limit)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// aggregate runs the actual pipeline: local store, then external sources for
// the remainder, then a dedup merge keyed by standard key.
func (s *service) aggregate(ctx context.Context, query string, searchType mtypes.SearchType, limit int) (*mtypes.SearchResponse, error) {
	var merged []*molecule.Molecule
	index := make(map[string]int)

	merge := func(records []*molecule.Molecule) {
		for _, rec := range records {
			if rec == nil || rec.StandardKey == "" {
				continue
			}
			if i, ok := index[rec.StandardKey]; ok {
				merged[i].Merge(rec)
				continue
			}
			index[rec.StandardKey] = len(merged)
			merged = append(merged, rec)
		}
	}

	local, err := s.repo.Search(ctx, query, searchType, limit)
	if err != nil {
		// Store failure degrades to zero local results; the external
		// sources can still answer.
		s.logger.Warn("local store search failed",
			logging.String("query", query),
			logging.Err(err),
		)
		if s.metrics != nil {
			s.metrics.RecordError("store", string(errors.GetCode(err)))
		}
		local = nil
	}
	merge(local)

	remaining := limit - len(merged)
	if remaining > 0 && len(s.sources) > 0 {
		merge(s.querySources(ctx, query, searchType, remaining))
	}

	total := len(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	s.attachDepictions(merged)
	s.writeBack(merged)

	results := make([]mtypes.MoleculeDTO, len(merged))
	for i, m := range merged {
		results[i] = m.ToDTO()
	}
	return &mtypes.SearchResponse{
		Query:      query,
		SearchType: string(searchType),
		Total:      total,
		Results:    results,
	}, nil
}

// querySources fans out to every external source concurrently. Each source
// gets its own timeout and a single attempt; failures degrade to an empty
// slice. Results are flattened in configured source order so merge output is
// deterministic.
func (s *service) querySources(ctx context.Context, query string, searchType mtypes.SearchType, limit int) []*molecule.Molecule {
	results := make([][]*molecule.Molecule, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()

			srcCtx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
			defer cancel()

			start := time.Now()
			records, err := src.Search(srcCtx, query, searchType, limit)
			if s.metrics != nil {
				s.metrics.RecordSourceCall(src.Name(), time.Since(start), err)
			}
			if err != nil {
				s.logger.Warn("external source search failed",
					logging.String("source", src.Name()),
					logging.String("query", query),
					logging.Err(err),
				)
				return
			}
			results[i] = records
		}(i, src)
	}
	wg.Wait()

	var flat []*molecule.Molecule
	for _, records := range results {
		flat = append(flat, records...)
	}
	return flat
}

// attachDepictions fills in inline SVG thumbnails for records that lack one.
func (s *service) attachDepictions(records []*molecule.Molecule) {
	for _, rec := range records {
		if rec.Structure2D != "" || rec.SMILES == "" {
			continue
		}
		mol, err := chem.ParseSMILES(rec.SMILES)
		if err != nil {
			continue
		}
		rec.Structure2D = format.Thumbnail(mol)
	}
}

// writeBack caches externally discovered molecules in the local store so the
// next search finds them without a network round trip. Records the repository
// already holds are skipped. Best-effort.
func (s *service) writeBack(records []*molecule.Molecule) {
	var external []*molecule.Molecule
	for _, rec := range records {
		if !rec.Persisted && rec.Source != "" {
			external = append(external, rec)
		}
	}
	if len(external) == 0 {
		return
	}

	s.writeBackWG.Add(1)
	go func() {
		defer s.writeBackWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, rec := range external {
			if err := s.repo.Upsert(ctx, rec); err != nil {
				s.logger.Warn("failed to cache external molecule locally",
					logging.String("standard_key", rec.StandardKey),
					logging.String("source", rec.Source),
					logging.Err(err),
				)
			}
		}
	}()
}

// ─────────────────────────────────────────────────────────────────────────────
// History
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) History(ctx context.Context, limit int) (*mtypes.HistoryResponse, error) {
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	if limit > s.cfg.HistoryMax {
		limit = s.cfg.HistoryMax
	}

	records, err := s.historyRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]mtypes.HistoryEntryDTO, len(records))
	for i, rec := range records {
		entries[i] = rec.ToDTO()
	}
	return &mtypes.HistoryResponse{Entries: entries, Total: len(entries)}, nil
}
