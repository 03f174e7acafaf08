package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsearch/internal/domain/molecule"
	"github.com/turtacn/molsearch/internal/sources"
	appErrors "github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeRepo struct {
	mu          sync.Mutex
	results     []*molecule.Molecule
	searchErr   error
	searchCalls int
	lastType    mtypes.SearchType
	lastLimit   int
	upserted    []*molecule.Molecule
}

func (r *fakeRepo) Search(_ context.Context, _ string, searchType mtypes.SearchType, limit int) ([]*molecule.Molecule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchCalls++
	r.lastType = searchType
	r.lastLimit = limit
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	// The real repository tags everything it scans.
	for _, m := range r.results {
		m.Persisted = true
	}
	return r.results, nil
}

func (r *fakeRepo) FindByKey(context.Context, string) (*molecule.Molecule, error) {
	return nil, appErrors.New(appErrors.ErrCodeMoleculeNotFound, "not found")
}

func (r *fakeRepo) Upsert(_ context.Context, mol *molecule.Molecule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, mol)
	return nil
}

func (r *fakeRepo) Count(context.Context) (int64, error) { return 0, nil }

func (r *fakeRepo) upsertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.upserted)
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	saved   []*molecule.SearchRecord
	saveErr error
	listed  []*molecule.SearchRecord
	listErr error
}

func (r *fakeHistoryRepo) Save(_ context.Context, rec *molecule.SearchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, rec)
	return nil
}

func (r *fakeHistoryRepo) List(_ context.Context, _ int) ([]*molecule.SearchRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.listed, nil
}

type fakeSource struct {
	mu        sync.Mutex
	name      string
	results   []*molecule.Molecule
	err       error
	delay     time.Duration
	calls     int
	lastLimit int
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Search(ctx context.Context, _ string, _ mtypes.SearchType, limit int) ([]*molecule.Molecule, error) {
	s.mu.Lock()
	s.calls++
	s.lastLimit = limit
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return appErrors.New(appErrors.ErrCodeNotFound, "cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memoryCache) DeleteByPrefix(context.Context, string) (int64, error) { return 0, nil }

func (c *memoryCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}
	val, err := loader(ctx)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, val, ttl); err != nil {
		return err
	}
	return c.Get(ctx, key, dest)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func mustMol(t *testing.T, smiles, source string) *molecule.Molecule {
	t.Helper()
	mol, err := molecule.NewFromSMILES(smiles, source)
	require.NoError(t, err)
	return mol
}

// chainMols builds n structurally distinct molecules (growing carbon chains).
func chainMols(t *testing.T, n int, source string) []*molecule.Molecule {
	t.Helper()
	mols := make([]*molecule.Molecule, n)
	for i := 0; i < n; i++ {
		mols[i] = mustMol(t, strings.Repeat("C", i+1), source)
	}
	return mols
}

func newTestService(repo *fakeRepo, historyRepo molecule.HistoryRepository, srcs []sources.Source, cfg Config) Service {
	return NewService(cfg, repo, historyRepo, srcs, nil, nil, nil, nil)
}

// ─────────────────────────────────────────────────────────────────────────────
// Search
// ─────────────────────────────────────────────────────────────────────────────

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeHistoryRepo{}, nil, Config{})

	_, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "   "})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeValidation))
}

func TestSearch_DefaultsApplied(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeHistoryRepo{}, nil, Config{})

	_, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "ethanol"})
	require.NoError(t, err)

	assert.Equal(t, mtypes.SearchByName, repo.lastType)
	assert.Equal(t, 20, repo.lastLimit)
}

func TestSearch_LimitClamped(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeHistoryRepo{}, nil, Config{MaxLimit: 50})

	_, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 90})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastLimit)
}

func TestSearch_LocalSatisfiesLimit_SkipsSources(t *testing.T) {
	repo := &fakeRepo{results: chainMols(t, 3, "local")}
	src := &fakeSource{name: "pubchem"}
	svc := newTestService(repo, &fakeHistoryRepo{}, []sources.Source{src}, Config{})

	resp, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Results, 3)
	assert.Zero(t, src.callCount(), "sources must not be contacted when local results fill the limit")
}

func TestSearch_RemainingPassedToSources(t *testing.T) {
	repo := &fakeRepo{results: chainMols(t, 15, "local")}
	src := &fakeSource{name: "pubchem"}
	svc := newTestService(repo, &fakeHistoryRepo{}, []sources.Source{src}, Config{})

	_, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, 5, src.lastLimit)
}

func TestSearch_DedupMerge(t *testing.T) {
	local := mustMol(t, "CCO", "local")
	local.Name = "ethanol"

	remoteDup := mustMol(t, "OCC", "pubchem")
	remoteDup.Name = "Ethyl alcohol"
	remoteDup.CAS = "64-17-5"
	remoteNew := mustMol(t, "c1ccccc1", "pubchem")
	remoteNew.Name = "benzene"

	repo := &fakeRepo{results: []*molecule.Molecule{local}}
	src := &fakeSource{name: "pubchem", results: []*molecule.Molecule{remoteDup, remoteNew}}
	svc := newTestService(repo, &fakeHistoryRepo{}, []sources.Source{src}, Config{})

	resp, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "ethanol", Limit: 10})
	require.NoError(t, err)

	require.Equal(t, 2, resp.Total)
	// First occurrence wins the slot and keeps its populated fields.
	first := resp.Results[0]
	assert.Equal(t, "ethanol", first.Name)
	assert.Equal(t, "local", first.Source)
	// Empty fields are filled from the duplicate, never overwritten.
	assert.Equal(t, "64-17-5", first.CAS)
	assert.Contains(t, first.Synonyms, "Ethyl alcohol")

	assert.Equal(t, "benzene", resp.Results[1].Name)
}

func TestSearch_TotalIsPreTruncation(t *testing.T) {
	repo := &fakeRepo{results: chainMols(t, 3, "local")}
	src := &fakeSource{name: "pubchem", results: []*molecule.Molecule{
		mustMol(t, "CCO", "pubchem"),
		mustMol(t, "c1ccccc1", "pubchem"),
		mustMol(t, "CC(=O)O", "pubchem"),
	}}
	svc := newTestService(repo, &fakeHistoryRepo{}, []sources.Source{src}, Config{})

	resp, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 4})
	require.NoError(t, err)

	assert.Equal(t, 6, resp.Total)
	assert.Len(t, resp.Results, 4)
}

func TestSearch_StoreFailureDegrades(t *testing.T) {
	repo := &fakeRepo{searchErr: assert.AnError}
	src := &fakeSource{name: "pubchem", results: []*molecule.Molecule{mustMol(t, "CCO", "pubchem")}}
	svc := newTestService(repo, &fakeHistoryRepo{}, []sources.Source{src}, Config{})

	resp, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestSearch_SourceFailureDegrades(t *testing.T) {
	repo := &fakeRepo{results: chainMols(t, 2, "local")}
	bad := &fakeSource{name: "pubchem", err: assert.AnError}
	good := &fakeSource{name: "chembl", results: []*molecule.Molecule{mustMol(t, "CCO", "chembl")}}
	svc := newTestService(repo, &fakeHistoryRepo{}, []sources.Source{bad, good}, Config{})

	resp, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
}

func TestSearch_SourceTimeoutDegrades(t *testing.T) {
	repo := &fakeRepo{}
	slow := &fakeSource{name: "pubchem", delay: time.Second, results: chainMols(t, 2, "pubchem")}
	svc := newTestService(repo, &fakeHistoryRepo{}, []sources.Source{slow}, Config{SourceTimeout: 30 * time.Millisecond})

	start := time.Now()
	resp, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 5})
	require.NoError(t, err)

	assert.Zero(t, resp.Total)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSearch_AttachesThumbnails(t *testing.T) {
	repo := &fakeRepo{results: []*molecule.Molecule{mustMol(t, "CCO", "local")}}
	svc := newTestService(repo, &fakeHistoryRepo{}, nil, Config{})

	resp, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 1})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Contains(t, resp.Results[0].Structure2D, "<svg")
}

func TestSearch_WritesBackExternalResults(t *testing.T) {
	repo := &fakeRepo{}
	src := &fakeSource{name: "pubchem", results: []*molecule.Molecule{mustMol(t, "CCO", "pubchem")}}
	svc := newTestService(repo, &fakeHistoryRepo{}, []sources.Source{src}, Config{}).(*service)

	_, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 5})
	require.NoError(t, err)

	svc.writeBackWG.Wait()
	assert.Equal(t, 1, repo.upsertCount())
}

func TestSearch_LocalResultsNotWrittenBack(t *testing.T) {
	repo := &fakeRepo{results: []*molecule.Molecule{mustMol(t, "CCO", "local")}}
	svc := newTestService(repo, &fakeHistoryRepo{}, nil, Config{}).(*service)

	_, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 5})
	require.NoError(t, err)

	svc.writeBackWG.Wait()
	assert.Zero(t, repo.upsertCount())
}

func TestSearch_PersistedExternalRowsNotReUpserted(t *testing.T) {
	// A row written back by an earlier search keeps its external source
	// attribution; loading it from the store again must not upsert it anew.
	stored := mustMol(t, "CCO", "pubchem")
	repo := &fakeRepo{results: []*molecule.Molecule{stored}}
	svc := newTestService(repo, &fakeHistoryRepo{}, nil, Config{}).(*service)

	_, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "ethanol", Limit: 5})
	require.NoError(t, err)

	svc.writeBackWG.Wait()
	assert.Zero(t, repo.upsertCount())
}

func TestSearch_CacheHitSkipsPipeline(t *testing.T) {
	repo := &fakeRepo{results: []*molecule.Molecule{mustMol(t, "CCO", "local")}}
	cache := newMemoryCache()
	svc := NewService(Config{}, repo, &fakeHistoryRepo{}, nil, nil, cache, nil, nil)

	req := &mtypes.SearchRequest{Query: "ethanol", Limit: 5}

	first, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.searchCalls)

	second, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.searchCalls, "cache hit must not re-run the pipeline")
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Results[0].StandardKey, second.Results[0].StandardKey)
}

func TestSearch_RecordsHistory(t *testing.T) {
	historyRepo := &fakeHistoryRepo{}
	recorder := NewRecorder(historyRepo, nil, nil, nil)
	repo := &fakeRepo{results: chainMols(t, 2, "local")}
	svc := NewService(Config{}, repo, historyRepo, nil, recorder, nil, nil, nil)

	_, err := svc.Search(context.Background(), &mtypes.SearchRequest{Query: "q", Limit: 5})
	require.NoError(t, err)

	recorder.Wait()
	require.Len(t, historyRepo.saved, 1)
	assert.Equal(t, "q", historyRepo.saved[0].Query)
	assert.Equal(t, 2, historyRepo.saved[0].ResultCount)
}

// ─────────────────────────────────────────────────────────────────────────────
// History
// ─────────────────────────────────────────────────────────────────────────────

func TestHistory(t *testing.T) {
	historyRepo := &fakeHistoryRepo{listed: []*molecule.SearchRecord{
		molecule.NewSearchRecord("benzene", mtypes.SearchByName, 2, 120*time.Millisecond),
		molecule.NewSearchRecord("CCO", mtypes.SearchBySMILES, 1, 80*time.Millisecond),
	}}
	svc := newTestService(&fakeRepo{}, historyRepo, nil, Config{})

	resp, err := svc.History(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "benzene", resp.Entries[0].Query)
	assert.Equal(t, "smiles", resp.Entries[1].SearchType)
}

func TestHistory_LimitClamped(t *testing.T) {
	calls := []int{}
	historyRepo := &recordingHistoryRepo{onList: func(limit int) { calls = append(calls, limit) }}
	svc := newTestService(&fakeRepo{}, historyRepo, nil, Config{})

	_, err := svc.History(context.Background(), 0)
	require.NoError(t, err)
	_, err = svc.History(context.Background(), 999)
	require.NoError(t, err)

	assert.Equal(t, []int{50, 200}, calls)
}

func TestHistory_ErrorPassthrough(t *testing.T) {
	historyRepo := &fakeHistoryRepo{listErr: assert.AnError}
	svc := newTestService(&fakeRepo{}, historyRepo, nil, Config{})

	_, err := svc.History(context.Background(), 10)
	assert.Error(t, err)
}

type recordingHistoryRepo struct {
	onList func(limit int)
}

func (r *recordingHistoryRepo) Save(context.Context, *molecule.SearchRecord) error { return nil }

func (r *recordingHistoryRepo) List(_ context.Context, limit int) ([]*molecule.SearchRecord, error) {
	r.onList(limit)
	return nil, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Concurrency smoke test
// ─────────────────────────────────────────────────────────────────────────────

func TestSearch_ConcurrentQueries(t *testing.T) {
	repo := &fakeRepo{results: chainMols(t, 2, "local")}
	src := &fakeSource{name: "pubchem", results: []*molecule.Molecule{mustMol(t, "CCO", "pubchem")}}
	svc := newTestService(repo, &fakeHistoryRepo{}, []sources.Source{src}, Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Search(context.Background(), &mtypes.SearchRequest{
				Query: fmt.Sprintf("query-%d", i),
				Limit: 5,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
