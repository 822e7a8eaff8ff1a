package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/celumarket/celumarket/internal/pkg/metrics"
)

const (
	JobKeyPrefix     = "job:"
	JobQueueKey      = "jobqueue:pending"
	JobProcessingKey = "jobqueue:processing"
	JobStatsKey      = "jobqueue:stats"

	DefaultMaxRetries = 3
	DefaultWorkers    = 3
	JobTTL            = 24 * time.Hour

	pollTimeout      = time.Second
	stuckJobMaxAge   = 10 * time.Minute
	stuckJobInterval = time.Minute
)

// Handler executes one job. A returned error counts as a failed attempt.
type Handler func(ctx context.Context, job *Job) error

// Queue is a Redis list backed work queue. Job ids move from the pending list
// to the processing list while a worker owns them.
type Queue struct {
	client     *redis.Client
	workers    int
	now        func() time.Time
	retryDelay func(attempt int) time.Duration

	mu       sync.Mutex
	handlers map[JobType]Handler
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewQueue(client *redis.Client, workers int) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		client:     client,
		workers:    workers,
		now:        time.Now,
		retryDelay: func(attempt int) time.Duration { return time.Duration(attempt) * time.Minute },
		handlers:   make(map[JobType]Handler),
	}
}

// Register binds a handler to a job type.
func (q *Queue) Register(jobType JobType, handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = handler
}

// Start launches the workers and the stuck job sweeper. Calling it twice is a no-op.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true
	q.stopCh = make(chan struct{})

	log.Infof("[JobQueue] Starting %d workers", q.workers)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i, q.stopCh)
	}
	q.wg.Add(1)
	go q.sweep(q.stopCh)
}

// Stop signals the workers and waits for in-flight jobs to settle.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.stopCh)
	q.mu.Unlock()

	q.wg.Wait()
	log.Info("[JobQueue] Workers stopped")
}

func (q *Queue) worker(id int, stop <-chan struct{}) {
	defer q.wg.Done()
	ctx := context.Background()
	for {
		select {
		case <-stop:
			return
		default:
		}

		job, err := q.claim(ctx, pollTimeout)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			log.Errorf("[JobQueue] Worker %d: claim failed: %v", id, err)
			select {
			case <-stop:
				return
			case <-time.After(time.Second):
			}
			continue
		}
		q.run(ctx, job)
	}
}

func (q *Queue) sweep(stop <-chan struct{}) {
	defer q.wg.Done()
	ticker := time.NewTicker(stuckJobInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := q.RecoverStuckJobs(context.Background(), stuckJobMaxAge, q.now()); err != nil {
				log.Errorf("[JobQueue] Sweep failed: %v", err)
			}
		}
	}
}

// RecoverStuckJobs puts jobs whose attempt started before now-maxAge back on the
// pending list and drops processing entries that no longer point at a
// processing job. It returns the number of requeued jobs.
func (q *Queue) RecoverStuckJobs(ctx context.Context, maxAge time.Duration, now time.Time) (int, error) {
	ids, err := q.client.LRange(ctx, JobProcessingKey, 0, -1).Result()
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, id := range ids {
		job, err := q.GetJob(ctx, id)
		if err != nil || job.Status != JobStatusProcessing {
			q.release(ctx, id)
			continue
		}
		age := now.Sub(job.startedAt())
		if age <= maxAge {
			continue
		}

		log.Warnf("[JobQueue] Requeueing stuck job %s (%s) after %s", job.ID, job.Type, age)
		job.Status = JobStatusPending
		job.LastError = "recovered by sweeper"
		job.UpdatedAt = now
		q.save(ctx, job)
		q.release(ctx, id)
		if err := q.client.RPush(ctx, JobQueueKey, id).Err(); err != nil {
			return recovered, err
		}
		recovered++
	}
	return recovered, nil
}

// EnqueueJob stores a job record and pushes its id on the pending list.
func (q *Queue) EnqueueJob(ctx context.Context, jobType JobType, payload any) (*Job, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", jobType, err)
		}
		raw = data
	}

	now := q.now()
	job := &Job{
		ID:          uuid.NewString(),
		Type:        jobType,
		Status:      JobStatusPending,
		Payload:     raw,
		MaxAttempts: DefaultMaxRetries,
		EnqueuedAt:  now,
		UpdatedAt:   now,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL)
	pipe.LPush(ctx, JobQueueKey, job.ID)
	pipe.HIncrBy(ctx, JobStatsKey, string(JobStatusPending), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Debugf("[JobQueue] Enqueued %s job %s", job.Type, job.ID)
	return job, nil
}

// ProcessNext runs at most one pending job on the calling goroutine and
// reports whether there was one.
func (q *Queue) ProcessNext(ctx context.Context) (bool, error) {
	job, err := q.claim(ctx, 0)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	q.run(ctx, job)
	return true, nil
}

// claim moves the next id from pending to processing and loads its record.
// A zero wait does not block.
func (q *Queue) claim(ctx context.Context, wait time.Duration) (*Job, error) {
	var (
		id  string
		err error
	)
	if wait > 0 {
		id, err = q.client.BRPopLPush(ctx, JobQueueKey, JobProcessingKey, wait).Result()
	} else {
		id, err = q.client.RPopLPush(ctx, JobQueueKey, JobProcessingKey).Result()
	}
	if err != nil {
		return nil, err
	}

	job, err := q.GetJob(ctx, id)
	if err != nil {
		q.release(ctx, id)
		return nil, fmt.Errorf("job %s: %w", id, err)
	}
	return job, nil
}

func (q *Queue) handler(jobType JobType) Handler {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.handlers[jobType]
}

func (q *Queue) run(ctx context.Context, job *Job) {
	job.start(q.now())
	q.save(ctx, job)

	var err error
	if h := q.handler(job.Type); h != nil {
		err = h(ctx, job)
	} else {
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	defer q.release(ctx, job.ID)

	if err == nil {
		job.complete(q.now())
		q.count(ctx, JobStatusCompleted)
		metrics.JobsProcessed.WithLabelValues(string(job.Type), string(JobStatusCompleted)).Inc()
		if err := q.client.Del(ctx, JobKeyPrefix+job.ID).Err(); err != nil {
			log.Errorf("[JobQueue] Failed to drop completed job %s: %v", job.ID, err)
		}
		return
	}

	job.fail(q.now(), err)
	if job.CanRetry() {
		log.Warnf("[JobQueue] Job %s failed (attempt %d/%d): %v", job.ID, job.Attempts, job.MaxAttempts, err)
		job.retry(q.now())
		q.save(ctx, job)
		q.requeueAfter(job.ID, q.retryDelay(job.Attempts))
		return
	}

	log.Errorf("[JobQueue] Job %s gave up after %d attempts: %v", job.ID, job.Attempts, err)
	q.save(ctx, job)
	q.count(ctx, JobStatusFailed)
	metrics.JobsProcessed.WithLabelValues(string(job.Type), string(JobStatusFailed)).Inc()
}

func (q *Queue) requeueAfter(id string, delay time.Duration) {
	push := func() {
		if err := q.client.LPush(context.Background(), JobQueueKey, id).Err(); err != nil {
			log.Errorf("[JobQueue] Failed to requeue job %s: %v", id, err)
		}
	}
	if delay <= 0 {
		push()
		return
	}
	time.AfterFunc(delay, push)
}

func (q *Queue) save(ctx context.Context, job *Job) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[JobQueue] Failed to encode job %s: %v", job.ID, err)
		return
	}
	if err := q.client.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to store job %s: %v", job.ID, err)
	}
}

func (q *Queue) release(ctx context.Context, id string) {
	if err := q.client.LRem(ctx, JobProcessingKey, 1, id).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to release job %s: %v", id, err)
	}
}

func (q *Queue) count(ctx context.Context, status JobStatus) {
	if err := q.client.HIncrBy(ctx, JobStatsKey, string(status), 1).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to count %s job: %v", status, err)
	}
}

// GetJob loads a job record. A missing record returns redis.Nil.
func (q *Queue) GetJob(ctx context.Context, id string) (*Job, error) {
	data, err := q.client.Get(ctx, JobKeyPrefix+id).Bytes()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}

// GetJobStats returns the lifetime counters per status.
func (q *Queue) GetJobStats(ctx context.Context) (map[JobStatus]int64, error) {
	raw, err := q.client.HGetAll(ctx, JobStatsKey).Result()
	if err != nil {
		return nil, err
	}
	stats := make(map[JobStatus]int64, len(raw))
	for status, v := range raw {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			stats[JobStatus(status)] = n
		}
	}
	return stats, nil
}

func (q *Queue) GetQueueSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobQueueKey).Result()
}

func (q *Queue) GetProcessingSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobProcessingKey).Result()
}
