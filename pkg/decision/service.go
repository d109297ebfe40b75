// Package decision implements the policy enforcement service: it takes
// LLM verdicts attributed to users, decides an action, executes it, and
// persists the outcome asynchronously.
package decision

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/modflow/modflow/pkg/metrics"
	"github.com/modflow/modflow/pkg/models"
	"github.com/modflow/modflow/pkg/policy"
)

// violationThreshold is the minimum confidence for a decision to count
// against the user's violation tally. Low-confidence verdicts are
// recorded in the audit trail but never escalate anyone.
const violationThreshold = 0.5

// Recorder is the persistence surface the service needs. Satisfied by
// storage.Store.
type Recorder interface {
	RecordDecision(ctx context.Context, d *models.ModerationDecision, actionTaken string) error
	UpsertViolation(ctx context.Context, userID string, confidence float64) error
	GetUserHistory(ctx context.Context, userID string) (*models.UserHistory, error)
	Stats(ctx context.Context) (map[string]any, error)
	Health(ctx context.Context) error
}

// persistJob is one unit of background write work.
type persistJob struct {
	decision *models.ModerationDecision
	action   string
}

// Service processes moderation decisions. Database writes happen on a
// background worker so enforcement latency does not include them.
type Service struct {
	store    Recorder
	executor *policy.Executor
	logger   *slog.Logger

	jobs chan persistJob
	wg   sync.WaitGroup

	stopOnce sync.Once
	stopCh   chan struct{}
}

const persistQueueSize = 256

// NewService builds the service and starts its persistence worker.
func NewService(store Recorder, executor *policy.Executor) *Service {
	s := &Service{
		store:    store,
		executor: executor,
		logger:   slog.Default().With("component", "decision"),
		jobs:     make(chan persistJob, persistQueueSize),
		stopCh:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.runPersister()
	return s
}

// Stop drains the persistence queue and stops the worker.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// Process handles one moderation decision end to end: normalize,
// consult history, pick an action, execute it, then queue the writes.
func (s *Service) Process(ctx context.Context, d *models.ModerationDecision) (models.ActionResponse, error) {
	start := time.Now()
	d.NormalizeSeverity()

	history, err := s.store.GetUserHistory(ctx, d.UserID)
	if err != nil {
		return models.ActionResponse{}, err
	}

	action := policy.DetermineAction(d.Confidence, d.Severity, history)
	resp := s.executor.Execute(ctx, action, d)

	s.enqueue(persistJob{decision: d, action: action})

	metrics.DecisionsTotal.WithLabelValues(action, d.Severity).Inc()
	metrics.ActionsExecutedTotal.WithLabelValues(action).Inc()
	metrics.DecisionProcessingSeconds.Observe(time.Since(start).Seconds())

	s.logger.Info("Decision processed",
		"user_id", d.UserID, "decision", d.Decision,
		"confidence", d.Confidence, "action", action)
	return resp, nil
}

// UserHistory returns the violation snapshot for a user, mapping users
// with no record to a clean zero-value history.
func (s *Service) UserHistory(ctx context.Context, userID string) (*models.UserHistory, error) {
	return s.store.GetUserHistory(ctx, userID)
}

// Stats proxies the storage aggregates.
func (s *Service) Stats(ctx context.Context) (map[string]any, error) {
	return s.store.Stats(ctx)
}

// Health proxies the storage health check.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

// enqueue hands a job to the persister. A full queue drops the write
// with an error log rather than blocking the request path.
func (s *Service) enqueue(job persistJob) {
	select {
	case s.jobs <- job:
	default:
		s.logger.Error("Persistence queue full, dropping write",
			"user_id", job.decision.UserID, "action", job.action)
	}
}

func (s *Service) runPersister() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobs:
			s.persist(job)
		case <-s.stopCh:
			// Drain whatever is queued before exiting.
			for {
				select {
				case job := <-s.jobs:
					s.persist(job)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) persist(job persistJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.store.RecordDecision(ctx, job.decision, job.action); err != nil {
		s.logger.Error("Failed to record decision", "user_id", job.decision.UserID, "error", err)
	}
	if job.decision.Confidence > violationThreshold {
		if err := s.store.UpsertViolation(ctx, job.decision.UserID, job.decision.Confidence); err != nil {
			s.logger.Error("Failed to update violation history", "user_id", job.decision.UserID, "error", err)
		}
	}
}
