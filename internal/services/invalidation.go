package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/worknote/backend/internal/config"
	"github.com/worknote/backend/pkg/logger"
)

const TaskTypeInvalidate = "cache:invalidate"

// InvalidateTask names one cached view to drop.
type InvalidateTask struct {
	Topic string `json:"topic"`
}

// Invalidator fans cache-invalidation topics out to whatever holds cached
// report views. Fire-and-forget: a lost signal means a stale cache entry,
// never inconsistent data, so failures are logged and dropped.
type Invalidator interface {
	Invalidate(topic string)
	Close() error
}

var (
	globalInvalidator Invalidator
	invalidatorOnce   sync.Once
)

// InitInvalidator picks the Redis-backed queue when Redis is enabled and an
// in-process dispatcher otherwise.
func InitInvalidator(cfg *config.Config) Invalidator {
	invalidatorOnce.Do(func() {
		if cfg.Redis.Enabled {
			inv, err := NewQueueInvalidator(&cfg.Redis)
			if err != nil {
				logger.Infof("[Invalidation] Redis unavailable, falling back to local mode: %v", err)
				globalInvalidator = NewLocalInvalidator()
			} else {
				logger.Infof("[Invalidation] queue invalidator initialized with Redis at %s", cfg.Redis.Addr)
				globalInvalidator = inv
			}
		} else {
			logger.Infof("[Invalidation] local invalidator initialized (Redis disabled)")
			globalInvalidator = NewLocalInvalidator()
		}
	})
	return globalInvalidator
}

func GetInvalidator() Invalidator {
	return globalInvalidator
}

// QueueInvalidator publishes invalidation topics through asynq so every
// consumer process sees them.
type QueueInvalidator struct {
	client *asynq.Client
}

func NewQueueInvalidator(cfg *config.RedisConfig) (*QueueInvalidator, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &QueueInvalidator{client: client}, nil
}

func (q *QueueInvalidator) Invalidate(topic string) {
	payload, err := json.Marshal(InvalidateTask{Topic: topic})
	if err != nil {
		logger.Errorf("[Invalidation] marshal failed: %v", err)
		return
	}
	if _, err := q.client.Enqueue(asynq.NewTask(TaskTypeInvalidate, payload), asynq.Queue("default")); err != nil {
		logger.Errorf("[Invalidation] enqueue failed for topic %s: %v", topic, err)
	}
}

func (q *QueueInvalidator) Close() error {
	return q.client.Close()
}

// LocalInvalidator dispatches topics to in-process subscribers.
type LocalInvalidator struct {
	mu          sync.RWMutex
	subscribers []func(topic string)
}

func NewLocalInvalidator() *LocalInvalidator {
	return &LocalInvalidator{}
}

// Subscribe registers a handler called for every emitted topic.
func (l *LocalInvalidator) Subscribe(fn func(topic string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

func (l *LocalInvalidator) Invalidate(topic string) {
	l.mu.RLock()
	subs := l.subscribers
	l.mu.RUnlock()
	for _, fn := range subs {
		fn(topic)
	}
}

func (l *LocalInvalidator) Close() error {
	return nil
}

// InvalidationWorker consumes queued invalidation tasks when Redis is
// enabled.
type InvalidationWorker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler func(topic string)
	running bool
	mu      sync.Mutex
}

func NewInvalidationWorker(cfg *config.RedisConfig) *InvalidationWorker {
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
				logger.Errorf("[Invalidation] error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &InvalidationWorker{server: server, mux: asynq.NewServeMux()}
}

func (w *InvalidationWorker) SetHandler(fn func(topic string)) {
	w.handler = fn
}

func (w *InvalidationWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}

	w.mux.HandleFunc(TaskTypeInvalidate, w.handleTask)
	w.running = true

	go func() {
		logger.Infof("[Invalidation] worker starting")
		if err := w.server.Run(w.mux); err != nil {
			logger.Errorf("[Invalidation] worker stopped: %v", err)
		}
	}()
}

func (w *InvalidationWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.server.Shutdown()
	w.running = false
}

func (w *InvalidationWorker) handleTask(ctx context.Context, t *asynq.Task) error {
	var task InvalidateTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return err
	}
	if w.handler != nil {
		w.handler(task.Topic)
	}
	return nil
}
