package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polmat77/classreviewmaster/internal/pipeline"
)

func TestJobStore_Lifecycle(t *testing.T) {
	store := newJobStore()

	job := store.Create()
	require.NotEmpty(t, job.ID)
	assert.Equal(t, JobStatusRunning, job.Status)

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Same(t, job, got)

	store.Finish(job.ID, &pipeline.Result{Source: "doc.txt"})
	snapshot, ok := store.Snapshot(job.ID)
	require.True(t, ok)
	assert.Equal(t, JobStatusDone, snapshot.Status)
	assert.Empty(t, snapshot.Error)
}

func TestJobStore_DegradedResultFails(t *testing.T) {
	store := newJobStore()
	job := store.Create()

	res := &pipeline.Result{
		Source:   "broken.pdf",
		Degraded: true,
		Failure:  &pipeline.ExtractError{Kind: pipeline.KindAcquisitionFailure, Reason: "no such file"},
	}
	store.Finish(job.ID, res)

	snapshot, ok := store.Snapshot(job.ID)
	require.True(t, ok)
	assert.Equal(t, JobStatusFailed, snapshot.Status)
	assert.Contains(t, snapshot.Error, "acquisition_failure")
}

func TestJobStore_EvictsExpired(t *testing.T) {
	store := newJobStore()
	store.ttl = time.Millisecond

	finished := store.Create()
	store.Finish(finished.ID, &pipeline.Result{})
	stillRunning := store.Create()
	stillRunning.CreatedAt = time.Now().Add(-time.Hour)

	time.Sleep(5 * time.Millisecond)
	finished.CreatedAt = time.Now().Add(-time.Hour)

	// Creation triggers eviction of expired finished jobs.
	store.Create()

	_, ok := store.Get(finished.ID)
	assert.False(t, ok, "finished job past TTL should be evicted")
	_, ok = store.Get(stillRunning.ID)
	assert.True(t, ok, "running jobs are never evicted")
}

func TestJobStore_UnknownJob(t *testing.T) {
	store := newJobStore()

	_, ok := store.Get("nope")
	assert.False(t, ok)
	_, ok = store.Snapshot("nope")
	assert.False(t, ok)

	// Finishing an unknown job is a no-op.
	store.Finish("nope", &pipeline.Result{})
}
