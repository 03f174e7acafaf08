package search

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/molsearch/internal/domain/molecule"
	"github.com/turtacn/molsearch/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/prometheus"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// EventPublisher publishes search-recorded events. *kafka.Producer satisfies
// it; a nil publisher disables event publication.
type EventPublisher interface {
	PublishSearchRecorded(ctx context.Context, payload kafka.SearchRecordedPayload) error
}

// Recorder persists search records off the request path. Recording is
// fire-and-forget: failures are logged at warn and swallowed, never surfaced
// to the search that produced them.
type Recorder struct {
	repo      molecule.HistoryRepository
	publisher EventPublisher
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
	timeout   time.Duration

	wg sync.WaitGroup
}

// NewRecorder builds a recorder. Publisher and metrics are optional.
func NewRecorder(repo molecule.HistoryRepository, publisher EventPublisher, metrics *prometheus.AppMetrics, log logging.Logger) *Recorder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Recorder{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    log.Named("history"),
		timeout:   5 * time.Second,
	}
}

// Record writes the search record asynchronously and, when messaging is
// configured, publishes a molecule.search.recorded event under the same
// best-effort contract.
func (r *Recorder) Record(query string, searchType mtypes.SearchType, resultCount int, duration time.Duration) {
	rec := molecule.NewSearchRecord(query, searchType, resultCount, duration)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		err := r.repo.Save(ctx, rec)
		if err != nil {
			r.logger.Warn("failed to record search",
				logging.String("query", rec.Query),
				logging.Err(err),
			)
		}
		if r.metrics != nil {
			r.metrics.RecordHistoryEvent(err)
		}

		if r.publisher == nil {
			return
		}
		payload := kafka.SearchRecordedPayload{
			RecordID:    string(rec.ID),
			Query:       rec.Query,
			SearchType:  string(rec.SearchType),
			ResultCount: rec.ResultCount,
			DurationMS:  rec.DurationMS,
			RecordedAt:  rec.CreatedAt,
		}
		if err := r.publisher.PublishSearchRecorded(ctx, payload); err != nil {
			r.logger.Warn("failed to publish search event",
				logging.String("record_id", string(rec.ID)),
				logging.Err(err),
			)
		}
	}()
}

// Wait blocks until every in-flight record has been processed.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
