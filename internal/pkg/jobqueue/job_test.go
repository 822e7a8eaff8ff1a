package jobqueue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"Pending", JobStatusPending, "pending"},
		{"Processing", JobStatusProcessing, "processing"},
		{"Completed", JobStatusCompleted, "completed"},
		{"Failed", JobStatusFailed, "failed"},
		{"Retrying", JobStatusRetrying, "retrying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.status))
		})
	}
}

func TestJob_CanRetry(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{"Failed job with attempts left", &Job{Status: JobStatusFailed, Attempts: 1, MaxAttempts: 3}, true},
		{"Failed job out of attempts", &Job{Status: JobStatusFailed, Attempts: 3, MaxAttempts: 3}, false},
		{"Completed job", &Job{Status: JobStatusCompleted, Attempts: 1, MaxAttempts: 3}, false},
		{"Pending job", &Job{Status: JobStatusPending, MaxAttempts: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.CanRetry())
		})
	}
}

func TestJob_Lifecycle(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	job := &Job{MaxAttempts: 3, EnqueuedAt: now}

	job.start(now.Add(time.Second))
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.Equal(t, now.Add(time.Second), job.startedAt())

	job.fail(now.Add(2*time.Second), errors.New("boom"))
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.LastError)
	assert.Equal(t, 1, job.Attempts)
	assert.True(t, job.CanRetry())

	job.retry(now.Add(3 * time.Second))
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.complete(now.Add(4 * time.Second))
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.FinishedAt)
	assert.Empty(t, job.LastError)
}

func TestJob_StartedAtFallback(t *testing.T) {
	enqueued := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, enqueued, (&Job{EnqueuedAt: enqueued}).startedAt())

	updated := enqueued.Add(time.Minute)
	assert.Equal(t, updated, (&Job{EnqueuedAt: enqueued, UpdatedAt: updated}).startedAt())
}

func TestJob_Decode(t *testing.T) {
	job := &Job{ID: "a", Payload: []byte(`{"template":"welcome","to":"ana@celumarket.test"}`)}
	var payload EmailPayload
	require.NoError(t, job.Decode(&payload))
	assert.Equal(t, "ana@celumarket.test", payload.To)

	assert.Error(t, (&Job{ID: "b"}).Decode(&payload))
}
