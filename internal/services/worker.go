package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/consultplan/consultplan/internal/config"
	"github.com/consultplan/consultplan/pkg/logger"
	"github.com/hibiken/asynq"
)

// Worker processes availability tasks from the Redis queue
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor func(context.Context, *AvailabilityTask) error
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// NewWorker creates a new worker instance
func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Warnf("[Worker] error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

// SetProcessor sets the function to process availability tasks
func (w *Worker) SetProcessor(processor func(context.Context, *AvailabilityTask) error) {
	w.processor = processor
}

// Start begins processing tasks
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeAvailability, w.handleAvailabilityTask)

	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[Worker] starting availability worker")
		if err := w.server.Run(w.mux); err != nil {
			logger.Errorf("[Worker] server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Infof("[Worker] shutting down")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
}

// handleAvailabilityTask processes a single availability refresh
func (w *Worker) handleAvailabilityTask(ctx context.Context, t *asynq.Task) error {
	var task AvailabilityTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		logger.Warnf("[Worker] failed to unmarshal task: %v", err)
		return err
	}

	if w.processor == nil {
		logger.Warnf("[Worker] no processor set")
		return nil
	}

	return w.processor(ctx, &task)
}

// Global worker instance
var (
	globalWorker *Worker
	workerOnce   sync.Once
)

// InitWorker initializes the global worker
func InitWorker(cfg *config.RedisConfig) *Worker {
	workerOnce.Do(func() {
		globalWorker = NewWorker(cfg)
	})
	return globalWorker
}
