package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nibiaa/TenantDesk/internal/pkg/cache"
)

const (
	// Redis key prefixes
	JobKeyPrefix     = "job:"
	JobQueueKey      = "job_queue"
	JobProcessingKey = "job_processing"

	// Job settings
	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour // Jobs expire after 24 hours
)

// Processor handles one job type.
type Processor func(job *Job) error

// Queue manages background jobs using Redis
type Queue struct {
	client     *redis.Client
	workers    int
	processors map[JobType]Processor
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewQueue creates a new job queue
func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = 2
	}

	return &Queue{
		client:     cache.GetClient(),
		workers:    workers,
		processors: make(map[JobType]Processor),
		stopCh:     make(chan struct{}),
	}
}

// RegisterProcessor attaches a processor for a job type. Must be called
// before Start.
func (q *Queue) RegisterProcessor(jobType JobType, p Processor) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processors[jobType] = p
}

// Start starts the job queue workers
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
		go q.worker(i)
	}
}

// Stop stops the job queue workers
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	log.Info("[JobQueue] Stopping workers...")
	close(q.stopCh)
	q.running = false
	q.mu.Unlock()

	q.wg.Wait()
	log.Info("[JobQueue] All workers stopped")
}

// Enqueue stores a job and pushes it onto the queue. Returns the job ID.
func (q *Queue) Enqueue(jobType JobType, payload map[string]interface{}) (string, error) {
	now := time.Now()
	job := &Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}

	ctx := context.Background()
	if err := q.saveJob(ctx, job); err != nil {
		return "", err
	}
	if err := q.client.LPush(ctx, JobQueueKey, job.ID).Err(); err != nil {
		return "", fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	return job.ID, nil
}

// GetJob loads a job by ID.
func (q *Queue) GetJob(id string) (*Job, error) {
	data, err := q.client.Get(context.Background(), JobKeyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (q *Queue) saveJob(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now()
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL).Err()
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			log.Infof("[JobQueue] Worker %d stopping", id)
			return
		default:
		}

		// Blocking pop with timeout so the stop channel is checked regularly.
		jobID, err := q.client.BRPopLPush(ctx, JobQueueKey, JobProcessingKey, 2*time.Second).Result()
		if err != nil {
			if err != redis.Nil {
				log.Errorf("[JobQueue] Worker %d pop error: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}

		q.processJob(ctx, jobID)
		_ = q.client.LRem(ctx, JobProcessingKey, 1, jobID).Err()
	}
}

func (q *Queue) processJob(ctx context.Context, jobID string) {
	job, err := q.GetJob(jobID)
	if err != nil {
		log.Errorf("[JobQueue] Job %s load failed: %v", jobID, err)
		return
	}

	q.mu.Lock()
	processor := q.processors[job.Type]
	q.mu.Unlock()
	if processor == nil {
		job.Status = JobStatusFailed
		job.ErrorMsg = fmt.Sprintf("no processor registered for type %s", job.Type)
		_ = q.saveJob(ctx, job)
		log.Errorf("[JobQueue] %s", job.ErrorMsg)
		return
	}

	now := time.Now()
	job.Status = JobStatusProcessing
	job.ProcessedAt = &now
	_ = q.saveJob(ctx, job)

	if err := processor(job); err != nil {
		job.ErrorMsg = err.Error()
		job.RetryCount++
		if job.RetryCount <= job.MaxRetries {
			job.Status = JobStatusRetrying
			_ = q.saveJob(ctx, job)
			_ = q.client.LPush(ctx, JobQueueKey, job.ID).Err()
			log.Warnf("[JobQueue] Job %s failed, retry %d/%d: %v", job.ID, job.RetryCount, job.MaxRetries, err)
			return
		}
		job.Status = JobStatusFailed
		_ = q.saveJob(ctx, job)
		log.Errorf("[JobQueue] Job %s failed permanently: %v", job.ID, err)
		return
	}

	done := time.Now()
	job.Status = JobStatusCompleted
	job.CompletedAt = &done
	_ = q.saveJob(ctx, job)
}
