package extractor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// JobNotFoundError is returned for unknown job IDs.
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("extractor: no job %q", e.JobID)
}

// NotReadyError is returned when a result is requested before the job
// reaches a terminal state.
type NotReadyError struct {
	JobID string
	State model.JobState
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("extractor: job %s not ready (state %s)", e.JobID, e.State)
}

// DocumentSource resolves document IDs for job workers.
type DocumentSource interface {
	GetDocument(ctx context.Context, id string) (model.Document, error)
}

// RecordSink receives extracted records after a job completes. Sink failures
// are logged, not fatal; the result is already terminal.
type RecordSink interface {
	IngestRecords(ctx context.Context, records []model.StakeholderRecord) error
}

type job struct {
	status   model.JobStatus
	cancel   context.CancelFunc
	result   *model.ExtractionResult
	failure  error
	watchers []chan model.JobStatus
}

// Manager owns asynchronous extraction jobs. Each job has exactly one
// worker goroutine; all status mutation goes through the manager's lock and
// callers only ever see copies.
type Manager struct {
	mu sync.Mutex

	orchestrator *Orchestrator
	docs         DocumentSource
	sinks        []RecordSink
	baseCtx      context.Context
	logger       *zap.Logger

	jobs map[string]*job
}

// NewManager creates a job manager. baseCtx bounds every worker; cancelling
// it cancels all running jobs.
func NewManager(baseCtx context.Context, orch *Orchestrator, docs DocumentSource, sinks ...RecordSink) *Manager {
	return &Manager{
		orchestrator: orch,
		docs:         docs,
		sinks:        sinks,
		baseCtx:      baseCtx,
		logger:       zap.L().Named("jobs"),
		jobs:         make(map[string]*job),
	}
}

// Start validates the request, registers a queued job and launches its
// worker. Unknown documents and unknown model overrides fail here, before a
// job exists.
func (m *Manager) Start(ctx context.Context, req model.ExtractionRequest) (model.JobStatus, error) {
	doc, err := m.docs.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return model.JobStatus{}, err
	}

	chain, err := m.orchestrator.Chain(req)
	if err != nil {
		return model.JobStatus{}, err
	}

	now := time.Now()
	jobCtx, cancel := context.WithCancel(m.baseCtx)
	j := &job{
		status: model.JobStatus{
			ID:            uuid.NewString(),
			State:         model.JobQueued,
			Request:       req,
			AttemptsTotal: len(chain),
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		cancel: cancel,
	}

	m.mu.Lock()
	m.jobs[j.status.ID] = j
	status := j.status
	m.mu.Unlock()

	go m.run(jobCtx, j.status.ID, doc, req)

	return status, nil
}

// Status returns a snapshot of the job.
func (m *Manager) Status(jobID string) (model.JobStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return model.JobStatus{}, &JobNotFoundError{JobID: jobID}
	}
	return j.status, nil
}

// Result returns the extraction result of a complete job. Non-terminal jobs
// get a NotReadyError; failed jobs return the worker's original error, so a
// chain exhaustion surfaces as an ExhaustedError with its full trace.
func (m *Manager) Result(jobID string) (*model.ExtractionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return nil, &JobNotFoundError{JobID: jobID}
	}

	switch j.status.State {
	case model.JobComplete:
		return j.result, nil
	case model.JobError:
		if j.failure != nil {
			return nil, j.failure
		}
		return nil, fmt.Errorf("extractor: job %s failed: %s", jobID, j.status.Error)
	case model.JobCancelled:
		return nil, fmt.Errorf("extractor: job %s was cancelled", jobID)
	default:
		return nil, &NotReadyError{JobID: jobID, State: j.status.State}
	}
}

// Cancel requests cancellation. The worker observes it at the next attempt
// boundary; the in-flight attempt's context is cut immediately. Cancelling
// a terminal job is a no-op.
func (m *Manager) Cancel(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return &JobNotFoundError{JobID: jobID}
	}
	if j.status.State.Terminal() {
		return nil
	}
	j.cancel()
	return nil
}

// Watch subscribes to status updates for a job. The channel receives every
// transition and is closed once the job is terminal. The returned stop
// function detaches the watcher.
func (m *Manager) Watch(jobID string) (<-chan model.JobStatus, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return nil, nil, &JobNotFoundError{JobID: jobID}
	}

	ch := make(chan model.JobStatus, 16)
	ch <- j.status
	if j.status.State.Terminal() {
		close(ch)
		return ch, func() {}, nil
	}

	j.watchers = append(j.watchers, ch)
	stop := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, w := range j.watchers {
			if w == ch {
				j.watchers = append(j.watchers[:i], j.watchers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, stop, nil
}

// run is the single worker for one job.
func (m *Manager) run(ctx context.Context, jobID string, doc model.Document, req model.ExtractionRequest) {
	m.update(jobID, func(j *job) {
		j.status.State = model.JobRunning
	})

	result, err := m.orchestrator.Extract(ctx, doc, req, func(p Progress) {
		m.update(jobID, func(j *job) {
			j.status.AttemptsDone = p.AttemptsDone
			j.status.AttemptsTotal = p.AttemptsTotal
			j.status.CurrentAttempt = p.CurrentModel
		})
	})

	switch {
	case err == nil:
		m.persist(result)
		m.update(jobID, func(j *job) {
			j.status.State = model.JobComplete
			j.status.AttemptsDone = len(result.Trace)
			j.status.CurrentAttempt = ""
			j.result = result
		})
	case errors.Is(err, context.Canceled):
		m.update(jobID, func(j *job) {
			j.status.State = model.JobCancelled
			j.status.CurrentAttempt = ""
		})
	default:
		var exhausted *ExhaustedError
		attempts := 0
		if errors.As(err, &exhausted) {
			attempts = len(exhausted.Trace)
		}
		m.update(jobID, func(j *job) {
			j.status.State = model.JobError
			j.status.Error = err.Error()
			j.status.AttemptsDone = attempts
			j.status.CurrentAttempt = ""
			j.failure = err
		})
	}
}

// persist hands completed records to every sink. Best effort.
func (m *Manager) persist(result *model.ExtractionResult) {
	if len(result.Stakeholders) == 0 {
		return
	}
	for _, sink := range m.sinks {
		if err := sink.IngestRecords(m.baseCtx, result.Stakeholders); err != nil {
			m.logger.Warn("record sink failed",
				zap.String("document_id", result.DocumentID),
				zap.Error(err),
			)
		}
	}
}

// update mutates a job under the lock and notifies watchers.
func (m *Manager) update(jobID string, fn func(*job)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return
	}

	fn(j)
	j.status.UpdatedAt = time.Now()

	for _, w := range j.watchers {
		select {
		case w <- j.status:
		default:
		}
	}
	if j.status.State.Terminal() {
		for _, w := range j.watchers {
			close(w)
		}
		j.watchers = nil
	}
}
