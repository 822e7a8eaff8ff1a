package jobqueue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/celumarket/celumarket/internal/pkg/mail"
)

// JobType selects the handler that runs a job.
type JobType string

const (
	JobTypeSendEmail JobType = "send_email"
)

// JobStatus is the lifecycle state of a stored job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job is the record kept in Redis for every queued unit of work.
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	LastError   string          `json:"last_error,omitempty"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}

// Decode unmarshals the payload into dest.
func (j *Job) Decode(dest any) error {
	if len(j.Payload) == 0 {
		return fmt.Errorf("job %s has no payload", j.ID)
	}
	return json.Unmarshal(j.Payload, dest)
}

// CanRetry reports whether a failed job has attempts left.
func (j *Job) CanRetry() bool {
	return j.Status == JobStatusFailed && j.Attempts < j.MaxAttempts
}

func (j *Job) start(now time.Time) {
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.StartedAt = &now
}

func (j *Job) complete(now time.Time) {
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.FinishedAt = &now
	j.LastError = ""
}

func (j *Job) fail(now time.Time, err error) {
	j.Status = JobStatusFailed
	j.UpdatedAt = now
	j.LastError = err.Error()
	j.Attempts++
}

func (j *Job) retry(now time.Time) {
	j.Status = JobStatusRetrying
	j.UpdatedAt = now
}

// startedAt is when the current attempt began, falling back to older stamps
// for records written before the attempt was stamped.
func (j *Job) startedAt() time.Time {
	switch {
	case j.StartedAt != nil && !j.StartedAt.IsZero():
		return *j.StartedAt
	case !j.UpdatedAt.IsZero():
		return j.UpdatedAt
	default:
		return j.EnqueuedAt
	}
}

// EmailPayload names a template, its recipient and the template binding.
type EmailPayload struct {
	Template mail.Template `json:"template"`
	To       string        `json:"to"`
	Data     mail.Data     `json:"data"`
}
