package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polmat77/classreviewmaster/internal/pipeline"
)

// Job statuses.
const (
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// Job is one asynchronous analysis.
type Job struct {
	ID        string
	Status    string
	Tracker   *pipeline.ProgressTracker
	Result    *pipeline.Result
	Error     string
	CreatedAt time.Time
}

// jobStore keeps jobs in memory. Finished jobs expire after a grace
// period so the map does not grow without bound.
type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	ttl  time.Duration
}

func newJobStore() *jobStore {
	return &jobStore{
		jobs: make(map[string]*Job),
		ttl:  time.Hour,
	}
}

// Create registers a new running job.
func (st *jobStore) Create() *Job {
	job := &Job{
		ID:        uuid.NewString(),
		Status:    JobStatusRunning,
		Tracker:   pipeline.NewProgressTracker(0),
		CreatedAt: time.Now(),
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.evictExpiredLocked()
	st.jobs[job.ID] = job
	return job
}

// Get looks up a job by ID.
func (st *jobStore) Get(id string) (*Job, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	job, ok := st.jobs[id]
	return job, ok
}

// Finish records the outcome of a job.
func (st *jobStore) Finish(id string, result *pipeline.Result) {
	st.mu.Lock()
	defer st.mu.Unlock()

	job, ok := st.jobs[id]
	if !ok {
		return
	}
	job.Result = result
	if result != nil && result.Degraded {
		job.Status = JobStatusFailed
		if result.Failure != nil {
			job.Error = result.Failure.Error()
		}
	} else {
		job.Status = JobStatusDone
	}
}

// Snapshot builds the API view of a job.
func (st *jobStore) Snapshot(id string) (JobResponse, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	job, ok := st.jobs[id]
	if !ok {
		return JobResponse{}, false
	}
	return JobResponse{
		JobID:   job.ID,
		Status:  job.Status,
		Percent: job.Tracker.PercentComplete(),
		Result:  job.Result,
		Error:   job.Error,
	}, true
}

func (st *jobStore) evictExpiredLocked() {
	cutoff := time.Now().Add(-st.ttl)
	for id, job := range st.jobs {
		if job.Status != JobStatusRunning && job.CreatedAt.Before(cutoff) {
			delete(st.jobs, id)
		}
	}
}
