package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/consultplan/consultplan/internal/config"
	"github.com/consultplan/consultplan/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeAvailability = "availability:refresh"
)

// AvailabilityTask asks for a consultant's availability flag to be
// recomputed from their current assignments.
type AvailabilityTask struct {
	ConsultantID string `json:"consultant_id"`
}

// TaskQueue defines the interface for availability refresh processing
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *AvailabilityTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global task queue instance
var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds an availability task to the async queue
func (q *AsyncQueue) Enqueue(task *AvailabilityTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeAvailability, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Debug().
		Str("task_id", info.ID).
		Str("consultant_id", task.ConsultantID).
		Msg("availability task enqueued")
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue with in-process processing (no Redis)
type SyncQueue struct {
	processor func(context.Context, *AvailabilityTask) error
}

// NewSyncQueue creates a new synchronous queue
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function to process tasks in-process
func (q *SyncQueue) SetProcessor(processor func(context.Context, *AvailabilityTask) error) {
	q.processor = processor
}

// Enqueue processes the task immediately in a goroutine so the HTTP
// response is not held up by the refresh.
func (q *SyncQueue) Enqueue(task *AvailabilityTask) error {
	if q.processor == nil {
		logger.Warnf("[SyncQueue] no processor set, task dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, task); err != nil {
			logger.Warnf("[SyncQueue] availability refresh failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncQueue) Close() error {
	return nil
}
